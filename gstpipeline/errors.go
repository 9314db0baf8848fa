package gstpipeline

import "errors"

var (
	ErrUnsupportedSoC = errors.New("operation is not supported on this SoC")
	ErrVideoFormat    = errors.New("unsupported video container, use .mkv, .webm or .mp4")
	ErrTextColor      = errors.New("unsupported text color, use red, green, blue, black or white")
)
