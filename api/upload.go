// ABOUTME: Multipart upload support for CSV imports
// ABOUTME: Streams one file field plus plain form fields in a single request
package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
)

// Upload posts a multipart form with one file part and the given text fields, decoding the
// response into out.
func (c *Client) Upload(ctx context.Context, path, fieldName, filename string, file io.Reader, fields map[string]string, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(mw, fieldName, filename, file, fields)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return c.send(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        pr,
		contentType: mw.FormDataContentType(),
		out:         out,
	})
}

func writeMultipart(mw *multipart.Writer, fieldName, filename string, file io.Reader, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	part, err := mw.CreateFormFile(fieldName, filename)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}
