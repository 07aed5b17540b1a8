package device

import (
	"fmt"
	"sync"
)

// Store owns the live parameter state.
//
// Thread Safety: all methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore creates a store holding initial, with strings normalised.
func NewStore(initial State) *Store {
	initial.Normalize()
	return &Store{state: initial}
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Reset replaces the whole state.
func (s *Store) Reset(st State) {
	st.Normalize()
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func checkIndex(what string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s %d", ErrIndexOutOfRange, what, i)
	}
	return nil
}

// SyncMode returns the genlock mode.
func (s *Store) SyncMode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SyncMode
}

// SetSyncMode sets the genlock mode.
func (s *Store) SetSyncMode(v string) {
	s.mu.Lock()
	s.state.SyncMode = truncate(v)
	s.mu.Unlock()
}

// ClockOffset returns the genlock clock offset.
func (s *Store) ClockOffset() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ClockOffset
}

// SetClockOffset sets the genlock clock offset.
func (s *Store) SetClockOffset(v float32) {
	s.mu.Lock()
	s.state.ClockOffset = v
	s.mu.Unlock()
}

// AnalogResolution returns the analog output resolution.
func (s *Store) AnalogResolution() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AnalogFormat.Resolution
}

// SetAnalogResolution sets the analog output resolution.
func (s *Store) SetAnalogResolution(v string) {
	s.mu.Lock()
	s.state.AnalogFormat.Resolution = truncate(v)
	s.mu.Unlock()
}

// AnalogFramerate returns the analog output frame rate.
func (s *Store) AnalogFramerate() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AnalogFormat.Framerate
}

// SetAnalogFramerate sets the analog output frame rate.
func (s *Store) SetAnalogFramerate(v float32) {
	s.mu.Lock()
	s.state.AnalogFormat.Framerate = v
	s.mu.Unlock()
}

// AnalogColourspace returns the analog output colourspace.
func (s *Store) AnalogColourspace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AnalogFormat.Colourspace
}

// SetAnalogColourspace sets the analog output colourspace.
func (s *Store) SetAnalogColourspace(v string) {
	s.mu.Lock()
	s.state.AnalogFormat.Colourspace = truncate(v)
	s.mu.Unlock()
}

// ColorMatrix returns one cell of the analog color matrix.
func (s *Store) ColorMatrix(row, col int) (float32, error) {
	if err := checkMatrix(row, col); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AnalogFormat.ColorMatrix[row][col], nil
}

// SetColorMatrix sets one cell of the analog color matrix.
func (s *Store) SetColorMatrix(row, col int, v float32) error {
	if err := checkMatrix(row, col); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.AnalogFormat.ColorMatrix[row][col] = v
	s.mu.Unlock()
	return nil
}

func checkMatrix(row, col int) error {
	if err := checkIndex("matrix row", row, MatrixSize); err != nil {
		return err
	}
	return checkIndex("matrix column", col, MatrixSize)
}

// InputConnected reports whether input i has a signal.
func (s *Store) InputConnected(i int) (bool, error) {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Inputs[i].Connected, nil
}

// SetInputConnected sets the connection flag of input i.
func (s *Store) SetInputConnected(i int, v bool) error {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Inputs[i].Connected = v
	s.mu.Unlock()
	return nil
}

// InputText returns a string parameter of input i.
func (s *Store) InputText(i int, f InputText) (string, error) {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.state.Inputs[i].text(f)
	if p == nil {
		return "", fmt.Errorf("%w: input text %d", ErrUnknownField, f)
	}
	return *p, nil
}

// SetInputText sets a string parameter of input i.
func (s *Store) SetInputText(i int, f InputText, v string) error {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.Inputs[i].text(f)
	if p == nil {
		return fmt.Errorf("%w: input text %d", ErrUnknownField, f)
	}
	*p = truncate(v)
	return nil
}

func (in *Input) text(f InputText) *string {
	switch f {
	case InputResolution:
		return &in.Resolution
	case InputColorspace:
		return &in.Colorspace
	case InputChromaSubsampling:
		return &in.ChromaSubsampling
	}
	return nil
}

// InputFramerate returns the frame rate of input i.
func (s *Store) InputFramerate(i int) (float32, error) {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Inputs[i].Framerate, nil
}

// SetInputFramerate sets the frame rate of input i.
func (s *Store) SetInputFramerate(i int, v float32) error {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Inputs[i].Framerate = v
	s.mu.Unlock()
	return nil
}

// InputBitDepth returns the bit depth of input i.
func (s *Store) InputBitDepth(i int) (int32, error) {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Inputs[i].BitDepth, nil
}

// SetInputBitDepth sets the bit depth of input i.
func (s *Store) SetInputBitDepth(i int, v int32) error {
	if err := checkIndex("input", i, NumInputs); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Inputs[i].BitDepth = v
	s.mu.Unlock()
	return nil
}

// SendInput returns the 1-based input number feeding send i.
func (s *Store) SendInput(i int) (int32, error) {
	if err := checkIndex("send", i, NumSends); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Sends[i].Input, nil
}

// SetSendInput routes input number v (1..NumInputs) to send i.
func (s *Store) SetSendInput(i int, v int32) error {
	if err := checkIndex("send", i, NumSends); err != nil {
		return err
	}
	if v < 1 || v > NumInputs {
		return fmt.Errorf("%w: %d", ErrInvalidInput, v)
	}
	s.mu.Lock()
	s.state.Sends[i].Input = v
	s.mu.Unlock()
	return nil
}

// SendFloat returns a float parameter of send i.
func (s *Store) SendFloat(i int, f SendField) (float32, error) {
	if err := checkIndex("send", i, NumSends); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.state.Sends[i].field(f)
	if p == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return *p, nil
}

// SetSendFloat sets a float parameter of send i.
func (s *Store) SetSendFloat(i int, f SendField, v float32) error {
	if err := checkIndex("send", i, NumSends); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.Sends[i].field(f)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	*p = v
	return nil
}

// SendLUT returns the lookup table of channel c on send i.
func (s *Store) SendLUT(i int, c Channel) (LUT, error) {
	if err := checkLUT(i, c); err != nil {
		return LUT{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Sends[i].LUT[c], nil
}

// SetSendLUT replaces the lookup table of channel c on send i.
func (s *Store) SetSendLUT(i int, c Channel, l LUT) error {
	if err := checkLUT(i, c); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Sends[i].LUT[c] = l
	s.mu.Unlock()
	return nil
}

func checkLUT(i int, c Channel) error {
	if err := checkIndex("send", i, NumSends); err != nil {
		return err
	}
	return checkIndex("channel", int(c), NumChannels)
}
