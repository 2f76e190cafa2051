package cmd

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
)

var profiles = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

func profileModes() []string {
	modes := make([]string, 0, len(profiles))
	for m := range profiles {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

type noProfile struct{}

func (noProfile) Stop() {}

func startProfile(mode string) (interface{ Stop() }, error) {
	if mode == "" {
		return noProfile{}, nil
	}

	fn, ok := profiles[mode]
	if !ok {
		return nil, errors.Errorf("unknown profile mode %q", mode)
	}

	return profile.Start(fn, profile.ProfilePath("."), profile.NoShutdownHook), nil
}
