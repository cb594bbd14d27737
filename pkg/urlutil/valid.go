package urlutil

import (
	"net/url"
	"strings"
)

// disallowedExtensions lists path suffixes that mark a URL as binary or
// media content not worth crawling, ported from the Python original's
// is_valid() denylist (scraper2.py).
var disallowedExtensions = map[string]struct{}{
	"css": {}, "js": {},
	"bmp": {}, "gif": {}, "jpg": {}, "jpeg": {}, "ico": {}, "png": {},
	"tiff": {}, "tif": {}, "mid": {}, "mp2": {}, "mp3": {}, "mp4": {},
	"wav": {}, "avi": {}, "mov": {}, "mpeg": {}, "ram": {}, "m4v": {},
	"mkv": {}, "ogg": {}, "ogv": {}, "pdf": {},
	"ps": {}, "eps": {}, "tex": {}, "ppt": {}, "pptx": {}, "doc": {}, "docx": {},
	"xls": {}, "xlsx": {}, "names": {},
	"data": {}, "dat": {}, "exe": {}, "bz2": {}, "tar": {}, "msi": {}, "bin": {},
	"7z": {}, "psd": {}, "dmg": {}, "iso": {},
	"epub": {}, "dll": {}, "cnf": {}, "tgz": {}, "sha1": {},
	"thmx": {}, "mso": {}, "arff": {}, "rtf": {}, "jar": {}, "csv": {},
	"rm": {}, "smil": {}, "wmv": {}, "swf": {}, "wma": {}, "zip": {}, "rar": {}, "gz": {},
}

// IsValid decides whether a URL is eligible for crawling: only http/https
// schemes are accepted, the path's final extension must not be in the
// binary/media denylist, and — in strict mode — the host must end in one
// of allowedSuffixes.
func IsValid(u url.URL, strict bool, allowedSuffixes []string) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if strict && len(allowedSuffixes) > 0 {
		host := strings.ToLower(u.Hostname())
		matched := false
		for _, suffix := range allowedSuffixes {
			if strings.HasSuffix(host, strings.ToLower(suffix)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	ext := lastExtension(u.Path)
	if ext == "" {
		return true
	}
	_, disallowed := disallowedExtensions[strings.ToLower(ext)]
	return !disallowed
}

// lastExtension returns the final path segment's extension (without the
// leading dot), or "" if the final segment has none.
func lastExtension(path string) string {
	slash := strings.LastIndexByte(path, '/')
	segment := path[slash+1:]

	dot := strings.LastIndexByte(segment, '.')
	if dot == -1 || dot == len(segment)-1 {
		return ""
	}
	return segment[dot+1:]
}
