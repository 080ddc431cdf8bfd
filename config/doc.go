// Package config loads service settings from the environment.
//
// Values come from optional dotenv files overlaid by the process
// environment, so a deployed variable always beats a checked-in file.
// Every value may reference other variables as ${NAME}; a reference to an
// unset variable is an error rather than an empty string.
package config
