package mosapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"mosbookings/internal/domain"
)

// roomMultipart encodes a room draft the way the backend's upload route expects:
// one "images" part per file plus plain-text fields, lists comma-joined.
func roomMultipart(d domain.RoomDraft, stamp int64) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for idx, img := range d.Images {
		ctype := img.ContentType
		if ctype == "" {
			ctype = domain.ImageContentType(img.Filename)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, UploadName(stamp, idx, ctype)))
		h.Set("Content-Type", ctype)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}

	fields := []struct{ k, v string }{
		{"roomName", d.Name},
		{"roomType", d.Type},
		{"roomLocation", d.Location},
		{"price", strconv.FormatFloat(d.Price, 'f', -1, 64)},
		{"amenities", strings.Join(d.Amenities, ",")},
		{"rating", strconv.FormatFloat(d.Rating, 'f', -1, 64)},
		{"description", d.Description},
		{"unavailableDates", strings.Join(d.UnavailableDates, ",")},
	}
	for _, f := range fields {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, f.k))
		h.Set("Content-Type", "text/plain; charset=utf-8")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.WriteString(part, f.v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// UploadName is the file name sent for the idx-th image of an upload.
func UploadName(stamp int64, idx int, ctype string) string {
	ext := "jpg"
	if ctype == "image/png" {
		ext = "png"
	}
	return fmt.Sprintf("image_%d_%d.%s", stamp, idx, ext)
}
