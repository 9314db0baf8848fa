package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"imxnn/gstpipeline"
	"imxnn/imx"
)

var ErrResolution = errors.New("-r parameter needs the following argument: width,height,framerate")
var ErrGraphPath = errors.New("OpenVX graph compilation only for i.MX8MPlus")
var ErrPerf = errors.New("perf display can be time or freq")

type PerfDisplay string

const (
	PerfNone PerfDisplay = ""
	PerfTime PerfDisplay = "time"
	PerfFreq PerfDisplay = "freq"
	PerfAll  PerfDisplay = "all"
)

// ParsePerfDisplay accepts time, freq, all and none.
func ParsePerfDisplay(s string) (PerfDisplay, error) {
	switch d := PerfDisplay(s); d {
	case PerfTime, PerfFreq, PerfAll:
		return d, nil
	case PerfNone, "none":
		return PerfNone, nil
	}
	return PerfNone, fmt.Errorf("%w: %q", ErrPerf, s)
}

// UnmarshalText validates display_perf in configuration files.
func (d *PerfDisplay) UnmarshalText(text []byte) error {
	v, err := ParsePerfDisplay(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d PerfDisplay) Perf() gstpipeline.Perf {
	return gstpipeline.Perf{
		Temporal:  d == PerfTime || d == PerfAll,
		Frequency: d == PerfFreq || d == PerfAll,
	}
}

// perfFlag is a boolean flag carrying an optional value, so -d, -d=time and -d=freq work.
type perfFlag struct {
	d *PerfDisplay
}

func (f perfFlag) String() string {
	if f.d == nil {
		return ""
	}
	return string(*f.d)
}

func (f perfFlag) Set(s string) error {
	switch s {
	case "true", "":
		*f.d = PerfAll
	case "false":
		*f.d = PerfNone
	default:
		d, err := ParsePerfDisplay(s)
		if err != nil {
			return err
		}
		*f.d = d
	}
	return nil
}

func (f perfFlag) IsBoolFlag() bool {
	return true
}

type Resolution struct {
	Width     int `toml:"width" json:"width"`
	Height    int `toml:"height" json:"height"`
	Framerate int `toml:"framerate" json:"framerate"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%d,%d,%d", r.Width, r.Height, r.Framerate)
}

// ParseResolution reads "width,height,framerate".
func ParseResolution(s string) (Resolution, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Resolution{}, ErrResolution
	}
	var values [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v <= 0 {
			return Resolution{}, fmt.Errorf("%w: %q", ErrResolution, s)
		}
		values[i] = v
	}
	return Resolution{Width: values[0], Height: values[1], Framerate: values[2]}, nil
}

// Config holds the options shared by the applications. Options taking two values, like
// the model paths of a two model application, are comma separated.
type Config struct {
	Backend       string      `toml:"backend" json:"backend"`
	Normalization string      `toml:"normalization" json:"normalization"`
	CameraDevice  string      `toml:"camera_device" json:"camera_device"`
	ModelPath     string      `toml:"model_path" json:"model_path"`
	LabelsPath    string      `toml:"labels_path" json:"labels_path"`
	BoxesPath     string      `toml:"boxes_path" json:"boxes_path"`
	VideoPath     string      `toml:"video_file" json:"video_file"`
	SavePath      string      `toml:"save_video" json:"save_video"`
	UseCamera     bool        `toml:"use_camera" json:"use_camera"`
	DisplayPerf   PerfDisplay `toml:"display_perf" json:"display_perf"`
	TextColor     string      `toml:"text_color" json:"text_color"`
	GraphPath     string      `toml:"graph_path" json:"graph_path"`
	Camera        Resolution  `toml:"camera" json:"camera"`
	Preview       string      `toml:"preview" json:"preview"`
	LogLevel      string      `toml:"log_level" json:"log_level"`
}

func Default() *Config {
	return &Config{
		Backend:       string(imx.NPU),
		Normalization: "none",
		Camera: Resolution{
			Width:     640,
			Height:    480,
			Framerate: 30,
		},
		LogLevel: "info",
	}
}

// Load returns defaults, or Default when nil, overridden by the TOML file at path when it
// exists.
func Load(path string, defaults *Config) (*Config, error) {
	config := Default()
	if defaults != nil {
		copied := *defaults
		config = &copied
	}
	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	return config, nil
}

// Parse loads the file named by -config over defaults, then applies the flags set on the
// command line.
func Parse(name string, args []string, defaults *Config) (*Config, error) {
	if defaults == nil {
		defaults = Default()
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a TOML configuration file")
	copied := *defaults
	flags := &copied
	var resolution string
	fs.StringVar(&flags.Backend, "b", flags.Backend, "Use the selected backend (CPU,GPU,NPU)")
	fs.StringVar(&flags.Normalization, "n", flags.Normalization,
		"Use the selected normalization (none,centered,reduced,centeredReduced,castInt32,castuInt8)")
	fs.StringVar(&flags.CameraDevice, "c", "", "Use the selected camera device (/dev/video{number})")
	fs.StringVar(&flags.ModelPath, "p", "", "Use the selected model path")
	fs.StringVar(&flags.LabelsPath, "l", "", "Use the selected labels path")
	fs.StringVar(&flags.BoxesPath, "x", "", "Use the selected boxes path")
	fs.StringVar(&flags.VideoPath, "f", "", "Use the selected video file instead of camera source")
	fs.StringVar(&flags.VideoPath, "v", "", "Alias of -f")
	fs.StringVar(&flags.SavePath, "s", "", "Save the displayed stream to the selected .mkv or .mp4 file")
	fs.BoolVar(&flags.UseCamera, "u", false, "Use the camera when a video file is also set")
	fs.Var(perfFlag{&flags.DisplayPerf}, "d", "Display performances, can specify -d=time or -d=freq")
	fs.StringVar(&flags.TextColor, "t", "",
		"Color of performances displayed, can choose between red, green, blue, and black (white by default)")
	fs.StringVar(&flags.GraphPath, "g", "",
		"Path to store the result of the OpenVX graph compilation (only for i.MX8MPlus)")
	fs.StringVar(&resolution, "r", "", "Use the selected camera resolution and framerate (width,height,framerate)")
	fs.StringVar(&flags.Preview, "w", "", "Serve an MJPEG and websocket preview on the selected address (e.g. :8080)")
	fs.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	config, err := Load(*configPath, defaults)
	if err != nil {
		return nil, err
	}
	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "b":
			config.Backend = flags.Backend
		case "n":
			config.Normalization = flags.Normalization
		case "c":
			config.CameraDevice = flags.CameraDevice
		case "p":
			config.ModelPath = flags.ModelPath
		case "l":
			config.LabelsPath = flags.LabelsPath
		case "x":
			config.BoxesPath = flags.BoxesPath
		case "f", "v":
			config.VideoPath = flags.VideoPath
		case "s":
			config.SavePath = flags.SavePath
		case "u":
			config.UseCamera = flags.UseCamera
		case "d":
			config.DisplayPerf = flags.DisplayPerf
		case "t":
			config.TextColor = flags.TextColor
		case "g":
			config.GraphPath = flags.GraphPath
		case "r":
			config.Camera, visitErr = ParseResolution(resolution)
		case "w":
			config.Preview = flags.Preview
		case "log-level":
			config.LogLevel = flags.LogLevel
		}
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return config, nil
}

// Validate checks the options that depend on the SoC, and the values a caller may have set
// without parsing.
func (c *Config) Validate(i imx.Imx) error {
	if c.GraphPath != "" && i.SoC() != imx.IMX8MP {
		return ErrGraphPath
	}
	if _, err := ParsePerfDisplay(string(c.DisplayPerf)); err != nil {
		return err
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 || c.Camera.Framerate <= 0 {
		return fmt.Errorf("%w: %s", ErrResolution, c.Camera)
	}
	return nil
}

// Pair splits a two value option at its first comma. Without a comma both values are s.
func Pair(s string) (string, string) {
	first, second, found := strings.Cut(s, ",")
	if !found {
		return s, s
	}
	return first, second
}

// Triple splits a three value option the way Pair does. Missing values repeat the last one.
func Triple(s string) (string, string, string) {
	first, rest, found := strings.Cut(s, ",")
	if !found {
		rest = s
	}
	second, third := Pair(rest)
	return first, second, third
}
