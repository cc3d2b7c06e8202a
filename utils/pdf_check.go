package utils

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"

	"github.com/ledongthuc/pdf"
)

// ValidatePDF kiểm tra file upload có phải PDF đọc được không
// và trả về số trang của tài liệu.
func ValidatePDF(fileHeader *multipart.FileHeader) (int, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return 0, errors.New("lỗi đọc file PDF")
	}

	reader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return 0, errors.New("file không phải PDF hợp lệ")
	}

	return reader.NumPage(), nil
}
