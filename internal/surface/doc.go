// Package surface implements one scanner per configuration category.
//
// Every scanner is a pure function of its Input: it enumerates candidate
// locations from the resolver (plus plugin overlay locations where the
// surface supports plugins), reads each one through fsread, coerces the
// parsed content into the surface record, and combines per-location results
// with the surface's fixed merge policy.
//
// Merge policies:
//   - last-wins: Settings.Effective, every Sandbox field, Permissions.DefaultMode
//   - accumulate-all: Permissions.Rules, Hooks, Mcp.Servers, Agents, Rules,
//     Keybindings, Memory
//
// A missing or malformed location contributes nothing; scanners never return
// errors for either.
package surface
