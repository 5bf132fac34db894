package hass

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// MinVersion is the oldest Home Assistant release whose registry and
// service-call responses the client understands.
const MinVersion = "2023.9.0"

var minVersion = semver.MustParse(MinVersion)

// CheckVersion reports whether the version announced during the handshake
// is at least MinVersion. Development builds such as "2024.6.0.dev0" that do
// not parse as semver are accepted.
func CheckVersion(raw string) error {
	if raw == "" {
		return nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil
	}
	if v.LessThan(minVersion) {
		return fmt.Errorf("home assistant %s is older than %s", raw, MinVersion)
	}
	return nil
}
