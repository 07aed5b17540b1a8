package routes

import (
	"errors"

	"github.com/i2pi/osc-firmware/internal/device"
	"github.com/i2pi/osc-firmware/internal/router"
)

// LUTShape describes the LUT payload in signature diagnostics.
const LUTShape = "16 x/y control points"

// LUTSignature accepts exactly one LUT worth of floats.
var LUTSignature = router.Repeat{Tag: 'f', Count: 2 * device.LUTPoints, Shape: LUTShape}

type matrixCell struct {
	row, col int
}

type lutKey struct {
	send    int
	channel device.Channel
}

func sendKey(f router.Fields) (int, error) {
	return f.Digit(0, '1', '0'+device.NumSends, ErrInvalidSend)
}

func inputKey(f router.Fields) (int, error) {
	return f.Digit(0, '1', '0'+device.NumInputs, ErrInvalidInput)
}

func matrixKey(f router.Fields) (matrixCell, error) {
	row, err := f.Digit(0, '0', '0'+device.MatrixSize-1, ErrMatrixIndex)
	if err != nil {
		return matrixCell{}, err
	}
	col, err := f.Digit(1, '0', '0'+device.MatrixSize-1, ErrMatrixIndex)
	if err != nil {
		return matrixCell{}, err
	}
	return matrixCell{row: row, col: col}, nil
}

func lutChannelKey(f router.Fields) (lutKey, error) {
	send, err := sendKey(f)
	if err != nil {
		return lutKey{}, err
	}
	ch, err := f.Letter(1, device.ChannelLetters, ErrInvalidLUTKey)
	if err != nil {
		return lutKey{}, err
	}
	return lutKey{send: send, channel: device.Channel(ch)}, nil
}

// New builds the route table over store.
//
// Parameters:
//   - store: parameter storage shared with every other ingress path
//
// Returns:
//   - *router.Table: the ordered table
//   - error: if a pattern fails validation
func New(store *device.Store) (*router.Table, error) {
	routes := []router.Route{
		{Pattern: router.AckAddress, Handler: router.Ack()},
		{Pattern: "/sync", Handler: router.Sync()},
		{
			Pattern:   "/sync_mode",
			Signature: router.Exact("s"),
			Handler:   router.Value(router.StringCodec, store.SyncMode, store.SetSyncMode),
		},
	}
	routes = append(routes, inputRoutes(store)...)
	routes = append(routes, analogRoutes(store)...)
	routes = append(routes, sendRoutes(store)...)
	return router.NewTable(routes...)
}

func inputRoutes(store *device.Store) []router.Route {
	text := func(f device.InputText) router.Handler {
		return router.Indexed(inputKey, router.StringCodec,
			func(i int) (string, error) { return store.InputText(i, f) },
			func(i int, v string) error { return store.SetInputText(i, f, v) })
	}
	return []router.Route{
		{Pattern: "/input/[1-4]/connected", Handler: inputConnected(store)},
		{Pattern: "/input/[1-4]/resolution", Signature: router.Exact("s"), Handler: text(device.InputResolution)},
		{
			Pattern:   "/input/[1-4]/framerate",
			Signature: router.Exact("f"),
			Handler:   router.Indexed(inputKey, router.Float32Codec, store.InputFramerate, store.SetInputFramerate),
		},
		{Pattern: "/input/[1-4]/colorspace", Signature: router.Exact("s"), Handler: text(device.InputColorspace)},
		{
			Pattern:   "/input/[1-4]/bit_depth",
			Signature: router.Exact("i"),
			Handler:   router.Indexed(inputKey, router.Int32Codec, store.InputBitDepth, store.SetInputBitDepth),
		},
		{Pattern: "/input/[1-4]/chroma_subsampling", Signature: router.Exact("s"), Handler: text(device.InputChromaSubsampling)},
	}
}

// analogRoutes covers the genlock clock offset and the analog output.
func analogRoutes(store *device.Store) []router.Route {
	return []router.Route{
		{
			Pattern:   "/clock_offset",
			Signature: router.Exact("f"),
			Handler:   router.Value(router.Float32Codec, store.ClockOffset, store.SetClockOffset),
		},
		{
			Pattern:   "/analog_format/resolution",
			Signature: router.Exact("s"),
			Handler:   router.Value(router.StringCodec, store.AnalogResolution, store.SetAnalogResolution),
		},
		{
			Pattern:   "/analog_format/framerate",
			Signature: router.Exact("f"),
			Handler:   router.Value(router.Float32Codec, store.AnalogFramerate, store.SetAnalogFramerate),
		},
		{
			Pattern:   "/analog_format/colourspace",
			Signature: router.Exact("s"),
			Handler:   router.Value(router.StringCodec, store.AnalogColourspace, store.SetAnalogColourspace),
		},
		{
			Pattern:   "/analog_format/color_matrix/[0-2]/[0-2]",
			Signature: router.Exact("f"),
			Handler: router.Indexed(matrixKey, router.Float32Codec,
				func(k matrixCell) (float32, error) { return store.ColorMatrix(k.row, k.col) },
				func(k matrixCell, v float32) error { return store.SetColorMatrix(k.row, k.col, v) }),
		},
	}
}

// inputConnected replies with a bare T or F tag, which no scalar codec
// signature can express, so it serves both directions itself.
func inputConnected(store *device.Store) router.Handler {
	return router.Raw(func(c *router.Call) error {
		i, err := inputKey(c.Fields)
		if err != nil {
			return err
		}
		if c.IsGet() {
			v, err := store.InputConnected(i)
			if err != nil {
				return err
			}
			tags, payload := router.BoolCodec.Encode(v)
			c.Reply(c.Message.Address, tags, payload...)
			return nil
		}
		v, err := router.BoolCodec.Decode(c.Message.Reader())
		if err != nil {
			return err
		}
		return store.SetInputConnected(i, v)
	})
}

func sendRoutes(store *device.Store) []router.Route {
	routes := []router.Route{{
		Pattern:   "/send/[1-4]/input",
		Signature: router.Exact("i"),
		Handler: router.Indexed(sendKey, router.Int32Codec, store.SendInput,
			func(i int, v int32) error {
				err := store.SetSendInput(i, v)
				if errors.Is(err, device.ErrInvalidInput) {
					return ErrInvalidInput
				}
				return err
			}),
	}}

	for _, field := range device.SendFields() {
		routes = append(routes, router.Route{
			Pattern:   "/send/[1-4]/" + field.String(),
			Signature: router.Exact("f"),
			Handler: router.Indexed(sendKey, router.Float32Codec,
				func(i int) (float32, error) { return store.SendFloat(i, field) },
				func(i int, v float32) error { return store.SetSendFloat(i, field, v) }),
		})
	}

	lutCodec := router.Float32ArrayCodec(2 * device.LUTPoints)
	routes = append(routes, router.Route{
		Pattern:   "/send/[1-4]/lut/[YRGB]",
		Signature: LUTSignature,
		Handler: router.Indexed(lutChannelKey, lutCodec,
			func(k lutKey) ([]float32, error) {
				l, err := store.SendLUT(k.send, k.channel)
				if err != nil {
					return nil, err
				}
				return l.Floats(), nil
			},
			func(k lutKey, v []float32) error {
				l, err := device.LUTFromFloats(v)
				if err != nil {
					return err
				}
				return store.SetSendLUT(k.send, k.channel, l)
			}),
	})
	return routes
}
