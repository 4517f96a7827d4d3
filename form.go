package main

import (
	"strconv"
	"strings"

	"image-scraper/config"
)

type GalleryRequest struct {
	URL       string `form:"url"`
	MaxImages string `form:"max_images"`
}

// parseMaxImages turns the raw max_images field into a count within limits.
// Anything that is not an integer falls back to the default.
func parseMaxImages(raw string, limits config.ImagesConfig) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return limits.Default
	}
	return max(limits.Min, min(limits.Max, n))
}
