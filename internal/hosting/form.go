package hosting

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
)

// imageFileField is the multipart part name carrying the uploaded image.
const imageFileField = "imageFile"

// parseForm parses a request body into FormData based on its
// Content-Type: multipart/form-data bodies are walked part by part,
// anything else is treated as application/x-www-form-urlencoded.
func parseForm(contentType, body string) (*FormData, error) {
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return parseMultipart(contentType, body)
	}
	return parseURLEncoded(body)
}

func parseURLEncoded(body string) (*FormData, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, fmt.Errorf("parse urlencoded body: %w", err)
	}

	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return &FormData{Fields: fields}, nil
}

func parseMultipart(contentType, body string) (*FormData, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("parse multipart content type: %w", err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("multipart body without boundary")
	}

	form := &FormData{Fields: make(map[string]string)}
	reader := multipart.NewReader(strings.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart part: %w", err)
		}

		content, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("read multipart part %q: %w", part.FormName(), err)
		}

		if part.FormName() == imageFileField && part.FileName() != "" {
			form.File = &FilePart{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Content:     content,
			}
			continue
		}
		form.Fields[part.FormName()] = string(content)
	}
	return form, nil
}
