package model

import "io"

// ImageUpload is a binary image payload received from a multipart
// request, forwarded to the object storage gateway.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}
