package device

import (
	"fmt"
	"unicode/utf8"
)

// Dimensions of the parameter space.
const (
	NumInputs    = 4
	NumSends     = 4
	NumChannels  = 4
	MatrixSize   = 3
	LUTPoints    = 16
	MaxStringLen = 15
)

// Channel selects one lookup table of a send.
type Channel int

// LUT channels, in address order.
const (
	ChannelY Channel = iota
	ChannelR
	ChannelG
	ChannelB
)

// ChannelLetters spells the channels as they appear in addresses.
const ChannelLetters = "YRGB"

func (c Channel) String() string {
	if c < 0 || int(c) >= len(ChannelLetters) {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return ChannelLetters[c : c+1]
}

// Point is one LUT control point.
type Point struct {
	X float32 `yaml:"x" json:"x"`
	Y float32 `yaml:"y" json:"y"`
}

// LUT is a piecewise curve given by its control points.
type LUT [LUTPoints]Point

// Floats flattens the LUT to x0, y0, x1, y1, ... as carried on the wire.
func (l LUT) Floats() []float32 {
	out := make([]float32, 0, 2*LUTPoints)
	for _, p := range l {
		out = append(out, p.X, p.Y)
	}
	return out
}

// LUTFromFloats is the inverse of LUT.Floats.
func LUTFromFloats(v []float32) (LUT, error) {
	var l LUT
	if len(v) != 2*LUTPoints {
		return l, fmt.Errorf("%w: %d values, want %d", ErrInvalidLUT, len(v), 2*LUTPoints)
	}
	for i := range l {
		l[i] = Point{X: v[2*i], Y: v[2*i+1]}
	}
	return l, nil
}

// SendField selects one of the float parameters of a send.
type SendField int

// Send float fields, in route order.
const (
	ScaleX SendField = iota
	ScaleY
	PosX
	PosY
	Rotation
	Pitch
	Yaw
	Brightness
	Contrast
	Saturation
	Hue
	numSendFields
)

var sendFieldNames = [numSendFields]string{
	"scaleX", "scaleY", "posX", "posY", "rotation", "pitch", "yaw",
	"brightness", "contrast", "saturation", "hue",
}

// SendFields returns every send float field in route order.
func SendFields() []SendField {
	out := make([]SendField, numSendFields)
	for i := range out {
		out[i] = SendField(i)
	}
	return out
}

// String returns the address segment for the field, e.g. "scaleX".
func (f SendField) String() string {
	if f < 0 || f >= numSendFields {
		return fmt.Sprintf("SendField(%d)", int(f))
	}
	return sendFieldNames[f]
}

// InputText selects one of the string parameters of an input.
type InputText int

// Input string fields.
const (
	InputResolution InputText = iota
	InputColorspace
	InputChromaSubsampling
)

// Input describes one video input as detected by the receiver.
type Input struct {
	Connected         bool    `yaml:"connected" json:"connected"`
	Resolution        string  `yaml:"resolution" json:"resolution"`
	Framerate         float32 `yaml:"framerate" json:"framerate"`
	Colorspace        string  `yaml:"colorspace" json:"colorspace"`
	BitDepth          int32   `yaml:"bit_depth" json:"bit_depth"`
	ChromaSubsampling string  `yaml:"chroma_subsampling" json:"chroma_subsampling"`
}

// AnalogFormat describes the analog output.
type AnalogFormat struct {
	Resolution  string                          `yaml:"resolution" json:"resolution"`
	Framerate   float32                         `yaml:"framerate" json:"framerate"`
	Colourspace string                          `yaml:"colourspace" json:"colourspace"`
	ColorMatrix [MatrixSize][MatrixSize]float32 `yaml:"color_matrix" json:"color_matrix"`
}

// Send is one output channel: its source, transform, picture controls and LUTs.
type Send struct {
	Input      int32            `yaml:"input" json:"input"`
	ScaleX     float32          `yaml:"scale_x" json:"scaleX"`
	ScaleY     float32          `yaml:"scale_y" json:"scaleY"`
	PosX       float32          `yaml:"pos_x" json:"posX"`
	PosY       float32          `yaml:"pos_y" json:"posY"`
	Rotation   float32          `yaml:"rotation" json:"rotation"`
	Pitch      float32          `yaml:"pitch" json:"pitch"`
	Yaw        float32          `yaml:"yaw" json:"yaw"`
	Brightness float32          `yaml:"brightness" json:"brightness"`
	Contrast   float32          `yaml:"contrast" json:"contrast"`
	Saturation float32          `yaml:"saturation" json:"saturation"`
	Hue        float32          `yaml:"hue" json:"hue"`
	LUT        [NumChannels]LUT `yaml:"lut" json:"lut"`
}

// field returns the storage for f.
func (s *Send) field(f SendField) *float32 {
	switch f {
	case ScaleX:
		return &s.ScaleX
	case ScaleY:
		return &s.ScaleY
	case PosX:
		return &s.PosX
	case PosY:
		return &s.PosY
	case Rotation:
		return &s.Rotation
	case Pitch:
		return &s.Pitch
	case Yaw:
		return &s.Yaw
	case Brightness:
		return &s.Brightness
	case Contrast:
		return &s.Contrast
	case Saturation:
		return &s.Saturation
	case Hue:
		return &s.Hue
	}
	return nil
}

// State is the complete parameter set. It contains no slices or maps, so
// plain assignment copies it deeply.
type State struct {
	SyncMode     string           `yaml:"sync_mode" json:"sync_mode"`
	ClockOffset  float32          `yaml:"clock_offset" json:"clock_offset"`
	Inputs       [NumInputs]Input `yaml:"inputs" json:"inputs"`
	AnalogFormat AnalogFormat     `yaml:"analog_format" json:"analog_format"`
	Sends        [NumSends]Send   `yaml:"sends" json:"sends"`
}

// Normalize truncates every string to MaxStringLen.
func (s *State) Normalize() {
	s.SyncMode = truncate(s.SyncMode)
	s.AnalogFormat.Resolution = truncate(s.AnalogFormat.Resolution)
	s.AnalogFormat.Colourspace = truncate(s.AnalogFormat.Colourspace)
	for i := range s.Inputs {
		in := &s.Inputs[i]
		in.Resolution = truncate(in.Resolution)
		in.Colorspace = truncate(in.Colorspace)
		in.ChromaSubsampling = truncate(in.ChromaSubsampling)
	}
}

// DefaultLUT is the factory curve: fourteen points parked at (-1, -1)
// followed by (0, 0) and (1, 1).
func DefaultLUT() LUT {
	var l LUT
	for i := range l {
		l[i] = Point{X: -1, Y: -1}
	}
	l[LUTPoints-2] = Point{X: 0, Y: 0}
	l[LUTPoints-1] = Point{X: 1, Y: 1}
	return l
}

// Defaults returns the factory state.
func Defaults() State {
	s := State{
		SyncMode:    "locked",
		ClockOffset: 0,
		Inputs: [NumInputs]Input{
			{Connected: true, Resolution: "1920x1080", Framerate: 24, Colorspace: "YUV", BitDepth: 8, ChromaSubsampling: "4:4:4"},
			{Connected: true, Resolution: "3840x2160", Framerate: 29.97, Colorspace: "YUV", BitDepth: 10, ChromaSubsampling: "4:2:0"},
			{Connected: false, Resolution: "1x1", Framerate: 24, Colorspace: "YUV", BitDepth: 0, ChromaSubsampling: "4:4:4"},
			{Connected: false, Resolution: "1x1", Framerate: 24, Colorspace: "YUV", BitDepth: 0, ChromaSubsampling: "4:4:4"},
		},
		AnalogFormat: AnalogFormat{
			Resolution:  "1920x1080",
			Framerate:   60,
			Colourspace: "RGB",
			ColorMatrix: [MatrixSize][MatrixSize]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		},
	}
	for i := range s.Sends {
		s.Sends[i] = Send{
			Input:      int32(i + 1), //nolint:gosec // i < NumSends
			ScaleX:     1,
			ScaleY:     1,
			Brightness: 0.5,
			Contrast:   0.5,
			Saturation: 0.5,
		}
		for c := range s.Sends[i].LUT {
			s.Sends[i].LUT[c] = DefaultLUT()
		}
	}
	return s
}

// truncate cuts s to MaxStringLen bytes without splitting a UTF-8 sequence.
func truncate(s string) string {
	if len(s) <= MaxStringLen {
		return s
	}
	n := MaxStringLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
