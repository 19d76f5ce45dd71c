// Package config loads the YAML file configuration shared by the docent
// library facade and its command-line tools. Absent values fall back to the
// component defaults, so an empty file is a working configuration.
package config
