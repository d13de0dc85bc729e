package client

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
)

// MultipartPayload is an opaque multipart/form-data body. When present on a
// request, the default JSON content type is dropped and the payload's own
// boundary-bearing content type is used instead.
type MultipartPayload struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	sealed bool
}

func NewMultipartPayload() *MultipartPayload {
	p := &MultipartPayload{}
	p.writer = multipart.NewWriter(&p.buf)
	return p
}

// AddField appends a plain form field.
func (p *MultipartPayload) AddField(name, value string) error {
	if p.sealed {
		return errors.New("multipart payload already sent")
	}
	return p.writer.WriteField(name, value)
}

// AddFile appends a file part read fully from r.
func (p *MultipartPayload) AddFile(field, filename string, r io.Reader) error {
	if p.sealed {
		return errors.New("multipart payload already sent")
	}
	part, err := p.writer.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}

// ContentType returns the multipart content type including the boundary.
func (p *MultipartPayload) ContentType() string {
	return p.writer.FormDataContentType()
}

// seal finalizes the body and returns its reader. A payload can be sent
// once.
func (p *MultipartPayload) seal() (io.Reader, error) {
	if !p.sealed {
		if err := p.writer.Close(); err != nil {
			return nil, err
		}
		p.sealed = true
	}
	return bytes.NewReader(p.buf.Bytes()), nil
}
