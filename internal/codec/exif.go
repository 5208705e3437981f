package codec

import (
	"errors"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// ExifInfo is what the probe reports about embedded EXIF. Encoded outputs
// never carry it.
type ExifInfo struct {
	Present bool
	Camera  string
}

// analyzeExif locates the EXIF block in an in-memory JPEG or TIFF and reads
// its flat tag list.
func analyzeExif(data []byte) (ExifInfo, error) {
	info := ExifInfo{}

	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errorsIsNoExif(err) {
			return info, nil
		}
		return info, err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		if errorsIsNoExif(err) {
			return info, nil
		}
		return info, err
	}

	var maker, model string
	for _, tag := range tags {
		if tag.IfdPath != "IFD" || descriptiveTags[tag.TagName] {
			info.Present = true
		}
		switch tag.TagName {
		case "Make":
			maker = strings.TrimSpace(tag.Formatted)
		case "Model", "CameraModelName":
			if model == "" {
				model = strings.TrimSpace(tag.Formatted)
			}
		}
	}

	switch {
	case maker != "" && model != "" && !strings.HasPrefix(strings.ToLower(model), strings.ToLower(maker)):
		info.Camera = maker + " " + model
	case model != "":
		info.Camera = model
	default:
		info.Camera = maker
	}
	return info, nil
}

// descriptiveTags are IFD0 tags that describe the capture rather than the
// raster layout. Every TIFF has an IFD0, so layout tags alone are not EXIF.
var descriptiveTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"DateTime":         true,
	"Software":         true,
	"Artist":           true,
	"Copyright":        true,
	"ImageDescription": true,
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
