// Package fxmanifest extracts the packing manifest from a resource's fxmanifest.lua.
// The script is never executed. A restricted parser accepts only declarative statements with literal
// values and forwards every intercepted key/value pair to a host callback, which builds the Manifest.
package fxmanifest
