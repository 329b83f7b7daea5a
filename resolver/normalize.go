package resolver

import "strings"

// Normalize collapses "." and ".." segments of a slash-separated path
// without touching the filesystem.
//
// Empty and "." segments are dropped. A ".." removes the previous segment
// when there is one that is not itself "..". Otherwise it is kept for
// relative paths and dropped for rooted ones, so a rooted path never climbs
// above "/" or above a leading volume marker such as "C:".
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	rooted := strings.HasPrefix(p, "/")
	segments := strings.Split(p, "/")

	out := make([]string, 0, len(segments))
	floor := 0
	for i, seg := range segments {
		switch {
		case seg == "" || seg == ".":
			continue
		case i == 0 && isVolume(seg):
			out = append(out, seg)
			floor = 1
			rooted = false
		case seg == "..":
			n := len(out)
			switch {
			case n > floor && out[n-1] != "..":
				out = out[:n-1]
			case rooted || floor > 0:
				// nothing above the root
			default:
				out = append(out, seg)
			}
		default:
			out = append(out, seg)
		}
	}

	joined := strings.Join(out, "/")
	if rooted {
		return "/" + joined
	}
	return joined
}

// isVolume reports whether seg is a drive marker like "C:".
func isVolume(seg string) bool {
	if len(seg) != 2 || seg[1] != ':' {
		return false
	}
	c := seg[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// splitSegments returns the non-empty segments of p.
func splitSegments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// lastSegment returns the final non-empty segment of p.
func lastSegment(p string) string {
	segments := splitSegments(p)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// joinPath appends name to dir with exactly one separator between them.
// An empty dir yields name unchanged.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + strings.TrimLeft(name, "/")
}
