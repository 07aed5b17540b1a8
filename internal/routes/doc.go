// Package routes defines the parameter surface of the device: the ordered
// route table that maps OSC addresses onto the device store.
//
// # Address Space
//
// Inputs and sends are numbered 1..4 in addresses and 0..3 in the store.
// The table order is significant: the first matching route wins, and a sync
// dump walks the routes in order, expanding bracket groups left-most first.
//
//	/ack                                      command
//	/sync                                     command, full dump then /ack
//	/sync_mode                                s
//	/input/[1-4]/connected                    T or F
//	/input/[1-4]/{resolution,...}             s, f or i
//	/clock_offset                             f
//	/analog_format/{resolution,...}           s or f
//	/analog_format/color_matrix/[0-2]/[0-2]   f
//	/send/[1-4]/input                         i, 1..4
//	/send/[1-4]/{scaleX,...,hue}              f
//	/send/[1-4]/lut/[YRGB]                    32 x f
package routes
