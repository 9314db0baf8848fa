package imx

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"golang.org/x/sys/unix"
)

const SOC_ID_PATH = "/sys/devices/soc0/soc_id"

type SoC int

const (
	Unknown SoC = iota
	IMX8MQ
	IMX8MM
	IMX8MN
	IMX8MP
	IMX8ULP
	IMX8QM
	IMX8QXP
	IMX93
	IMX95
)

type Features struct {
	GPU2D bool
	GPU3D bool
	NPU   bool
}

type socInfo struct {
	id       string
	machine  string
	name     string
	features Features
}

var socTable = map[SoC]socInfo{
	IMX8MQ:  {"i.MX8MQ", "imx8mq", "i.MX 8M Quad", Features{GPU2D: false, GPU3D: true, NPU: false}},
	IMX8MM:  {"i.MX8MM", "imx8mm", "i.MX 8M Mini", Features{GPU2D: true, GPU3D: true, NPU: false}},
	IMX8MN:  {"i.MX8MN", "imx8mn", "i.MX 8M Nano", Features{GPU2D: false, GPU3D: true, NPU: false}},
	IMX8MP:  {"i.MX8MP", "imx8mp", "i.MX 8M Plus", Features{GPU2D: true, GPU3D: true, NPU: true}},
	IMX8ULP: {"i.MX8ULP", "imx8ulp", "i.MX 8ULP", Features{GPU2D: true, GPU3D: true, NPU: false}},
	IMX8QM:  {"i.MX8QM", "imx8qm", "i.MX 8QuadMax", Features{GPU2D: true, GPU3D: true, NPU: false}},
	IMX8QXP: {"i.MX8QXP", "imx8qxp", "i.MX 8QuadXPlus", Features{GPU2D: true, GPU3D: true, NPU: false}},
	IMX93:   {"i.MX93", "imx93", "i.MX 93", Features{GPU2D: false, GPU3D: false, NPU: true}},
	IMX95:   {"i.MX95", "imx95", "i.MX 95", Features{GPU2D: true, GPU3D: true, NPU: true}},
}

var machineRegexp = regexp.MustCompile(`imx8mq|imx8mm|imx8mn|imx8mp|imx8ulp|imx8qm|imx8qxp|imx93|imx95`)

// Imx answers which accelerators of the running SoC a pipeline may use.
type Imx struct {
	soc SoC
}

func New(soc SoC) Imx {
	return Imx{soc: soc}
}

// Detect reads the SoC from sysfs and falls back to the machine name from uname.
func Detect() Imx {
	return DetectFrom(SOC_ID_PATH, uname())
}

// uname is the uname -a text: system, node name, release, version and machine.
func uname() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return strings.Join([]string{
		unix.ByteSliceToString(u.Sysname[:]),
		unix.ByteSliceToString(u.Nodename[:]),
		unix.ByteSliceToString(u.Release[:]),
		unix.ByteSliceToString(u.Version[:]),
		unix.ByteSliceToString(u.Machine[:]),
	}, " ")
}

func DetectFrom(socIdPath string, uname string) Imx {
	if file, err := os.Open(socIdPath); err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		if scanner.Scan() {
			if soc := socFromId(strings.TrimSpace(scanner.Text())); soc != Unknown {
				return Imx{soc: soc}
			}
		}
	}
	return Imx{soc: socFromMachine(uname)}
}

func socFromId(id string) SoC {
	for soc, info := range socTable {
		if info.id == id {
			return soc
		}
	}
	return Unknown
}

func socFromMachine(uname string) SoC {
	machine := machineRegexp.FindString(strings.ToLower(uname))
	if machine == "" {
		return Unknown
	}
	for soc, info := range socTable {
		if info.machine == machine {
			return soc
		}
	}
	return Unknown
}

func (i Imx) SoC() SoC {
	return i.soc
}

func (i Imx) Name() string {
	if info, ok := socTable[i.soc]; ok {
		return info.name
	}
	return "unknown"
}

func (i Imx) Features() Features {
	return socTable[i.soc].features
}

func (i Imx) IsIMX8() bool {
	switch i.soc {
	case IMX8MQ, IMX8MM, IMX8MN, IMX8MP, IMX8ULP, IMX8QM, IMX8QXP:
		return true
	}
	return false
}

func (i Imx) IsIMX9() bool {
	return i.soc == IMX93 || i.soc == IMX95
}

func (i Imx) HasGPUML() bool {
	if i.soc == IMX8MM || i.soc == IMX8ULP {
		return false
	}
	return i.Features().GPU3D
}

func (i Imx) HasVsiGPU() bool {
	return i.HasGPUML() && i.IsIMX8()
}

func (i Imx) HasVsiNPU() bool {
	return i.soc == IMX8MP
}

func (i Imx) HasEthosNPU() bool {
	return i.soc == IMX93
}

func (i Imx) HasNeutronNPU() bool {
	return i.soc == IMX95
}

func (i Imx) HasG2D() bool {
	return (i.IsIMX8() && i.soc != IMX8MQ) || i.soc == IMX95
}

func (i Imx) HasPXP() bool {
	return i.soc == IMX93
}
