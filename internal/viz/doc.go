// Package viz renders output tables in the terminal.
//
//   - [Plot]: asciigraph chart of one column, optionally against the setpoint
//   - [Viewer]: scrollable Bubble Tea pager over the rows of a table
//   - [Sparkline]: one-line overview of a series
//
// # Key Bindings
//
//	j/k, up/down     - scroll one row
//	f/b, pgdn/pgup   - scroll one page
//	g/G, home/end    - jump to first/last row
//	q, esc           - quit
package viz
