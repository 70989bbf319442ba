package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

var errMalformedAuth = errors.New("response is missing accessToken or user")

// File is an uploaded file part.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

type multipartForm struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.writer.WriteField(name, value)
}

func (f *multipartForm) file(name string, file *File) error {
	if file == nil || f.err != nil {
		return f.err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, file.Filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := f.writer.CreatePart(header)
	if err != nil {
		f.err = err
		return err
	}
	_, f.err = part.Write(file.Data)
	return f.err
}

func (f *multipartForm) close() error {
	if f.err != nil {
		return f.err
	}
	return f.writer.Close()
}

func (c *Client) sendMultipart(ctx context.Context, method, endpoint string, form *multipartForm, out interface{}, opts ...requestOption) error {
	if err := form.close(); err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	return c.do(ctx, method, endpoint, &form.buf, form.writer.FormDataContentType(), out, opts...)
}
