// Package core is the sample domain: numbers that are added to and multiplied, and
// numbers that only accept odd or even values.
//
// NumberDecider, OddDecider and EvenDecider are independent leaf Deciders with their
// own command, state and event types. They are combined into one Decider over the
// NumberCommand and NumberEvent unions, and the Views are combined the same way.
//
// Nothing here does I/O; the shell package next to it stores the events.
package core
