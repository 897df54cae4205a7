package types

import "strings"

// FileKind is the display category of a file, derived from its extension.
type FileKind string

// File kinds.
const (
	KindAudio         FileKind = "audio"
	KindImage         FileKind = "image"
	KindVideo         FileKind = "video"
	KindTranscription FileKind = "transcription"
	KindUnknown       FileKind = "unknown"
)

var kindByExt = map[string]FileKind{}

func init() {
	register := func(k FileKind, exts ...string) {
		for _, e := range exts {
			kindByExt[e] = k
		}
	}
	register(KindAudio, "wav", "wave", "aif", "aiff", "au", "flac", "mp3", "ogg")
	register(KindImage, "png", "jpg", "jpeg", "bmp", "gif", "tif", "tiff")
	register(KindVideo, "mp4", "avi", "mkv", "mov", "webm", "mpg", "mpeg")
	register(KindTranscription, "xra", "textgrid", "eaf", "antx", "trs", "tdf",
		"mrk", "lab", "ctm", "stm", "csv", "txt", "srt", "sub", "pitchtier", "hz",
		"arff", "xml")
}

// KindOf returns the kind of a file extension. The leading dot is optional
// and the comparison is case-insensitive.
func KindOf(ext string) FileKind {
	e := strings.ToLower(strings.TrimPrefix(ext, "."))
	if k, ok := kindByExt[e]; ok {
		return k
	}
	return KindUnknown
}
