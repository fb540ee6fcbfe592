// Package config reads voice profiles from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

const DefaultProfileName = "default"

// DefaultProfile is used when no profile file is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:         DefaultProfileName,
		LanguageCode: "en-US",
		VoiceName:    "en-US-Neural2-D",
		SpeakingRate: 1.0,
	}
}

// GetProfile returns the named profile from the file at path. An empty path
// yields the default profile.
func GetProfile(path string, name string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Profile{}, err
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Profile{}, err
	}

	var config Config

	if err := json.Unmarshal(bytes, &config); err != nil {
		return Profile{}, err
	}
	profile, exists := profileExists(config.Profiles, name)
	if !exists {
		return Profile{}, fmt.Errorf("profile[%s] does not exist", name)
	}

	return withDefaults(profile), nil
}

// GetSpeechContext returns the profile's recognition hints in a stable order.
func GetSpeechContext(p Profile) []string {
	keys := make([]string, 0, len(p.SpeechContext))
	for k := range p.SpeechContext {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	scSlice := make([]string, 0, len(keys))

	for _, k := range keys {
		scSlice = append(scSlice, p.SpeechContext[k])
	}

	return scSlice
}

func profileExists(profiles []Profile, name string) (Profile, bool) {
	for _, profile := range profiles {
		if profile.Name == name {
			return profile, true
		}
	}
	return Profile{}, false
}

func withDefaults(p Profile) Profile {
	d := DefaultProfile()
	if p.LanguageCode == "" {
		p.LanguageCode = d.LanguageCode
	}
	if p.SpeakingRate <= 0 {
		p.SpeakingRate = d.SpeakingRate
	}
	return p
}
