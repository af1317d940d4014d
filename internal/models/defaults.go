package models

import "animator-service/internal/entity"

var (
	wideAspectRatios  = []string{"16:9", "4:3", "1:1", "3:4", "9:16", "21:9", "9:21"}
	standardDefaults  = entity.ModelSettings{Duration: 5, Resolution: "720p", AspectRatio: "16:9", FPS: 24}
	fixedFourDefaults = entity.ModelSettings{Duration: 4, Resolution: "720p", AspectRatio: "16:9", FPS: 24}
)

// Default returns the built-in model catalog.
func Default() *Catalog {
	return NewCatalog(
		Model{
			ID:           "wan-2.2-5b-fast",
			DisplayName:  "WAN 2.2-5B Fast",
			MaxDuration:  4,
			Resolutions:  []string{"480p", "720p"},
			AspectRatios: []string{"16:9", "9:16"},
			Defaults:     fixedFourDefaults,
		},
		Model{
			ID:                "wan-2.2-i2v-fast",
			DisplayName:       "WAN 2.2 I2V Fast",
			SupportsLastFrame: true,
			MaxDuration:       5,
			Resolutions:       []string{"480p", "720p"},
			AspectRatios:      []string{"16:9", "9:16"},
			Defaults:          standardDefaults,
		},
		Model{
			ID:           "seedance-pro-fast",
			DisplayName:  "Seedance Pro Fast",
			MaxDuration:  12,
			Resolutions:  []string{"480p", "720p", "1080p"},
			AspectRatios: wideAspectRatios,
			Defaults:     standardDefaults,
		},
		Model{
			ID:                           "seedance-lite",
			DisplayName:                  "Seedance Lite",
			MaxReferenceImages:           4,
			SupportsLastFrame:            true,
			MaxDuration:                  12,
			Resolutions:                  []string{"480p", "720p", "1080p"},
			AspectRatios:                 wideAspectRatios,
			LastFrameOverridesReferences: true,
			ReferenceBlockedResolutions:  []string{"1080p"},
			Defaults:                     standardDefaults,
		},
		Model{
			ID:           "kling-2.5-turbo-pro",
			DisplayName:  "Kling 2.5 Turbo Pro",
			MaxDuration:  10,
			Resolutions:  []string{"720p"},
			AspectRatios: []string{"16:9", "9:16", "1:1"},
			Defaults:     standardDefaults,
		},
		Model{
			ID:                "seedance-pro",
			DisplayName:       "Seedance Pro (Legacy)",
			SupportsLastFrame: true,
			MaxDuration:       12,
			Resolutions:       []string{"480p", "720p", "1080p"},
			AspectRatios:      wideAspectRatios,
			Defaults:          entity.ModelSettings{Duration: 5, Resolution: "1080p", AspectRatio: "16:9", FPS: 24},
		},
	)
}
