// Package pose defines the 6-DoF sample and frame values exchanged between the
// driving loop and the record streams. Positions are gonum r3 vectors and
// orientations gonum quaternions, with x, y, z mapped to the Imag, Jmag and
// Kmag parts and w to Real.
package pose
