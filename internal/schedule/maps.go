package schedule

import "net/url"

const mapsSearchBase = "https://www.google.com/maps/search/?api=1&query="

// MapsSearchURL builds a Google Maps search link for a location string.
func MapsSearchURL(location string) string {
	return mapsSearchBase + url.QueryEscape(location)
}
