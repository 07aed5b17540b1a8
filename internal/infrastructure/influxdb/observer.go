package influxdb

import "github.com/i2pi/osc-firmware/internal/router"

// ParameterChanged implements router.Observer.
// The write API buffers points, so this does not block on the network.
func (c *Client) ParameterChanged(ch router.Change) {
	c.WriteParameterChangeAt(ch.Address, ch.Tags, ch.Args, ch.Origin, ch.At)
}
