package youtube

import (
	"net/url"
	"strings"
)

// ExtractVideoID pulls the video id out of a YouTube URL. Short youtu.be
// links carry the id as the first path segment; youtube.com links carry it
// in the v query parameter. Any other host, or a missing id, yields "".
func ExtractVideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())

	if host == "youtu.be" {
		seg := strings.TrimPrefix(u.Path, "/")
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			seg = seg[:i]
		}
		return seg
	}

	if strings.Contains(host, "youtube.com") {
		return u.Query().Get("v")
	}

	return ""
}
