package feishu

import (
	"encoding/json"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// AttachmentInfo derives the display name and category bucket for an
// attachment message from its type and raw JSON content. Files and media
// are bucketed by filename extension; images carry no filename, so the
// name is derived from the image key to keep repeats distinguishable.
func AttachmentInfo(msgType, content string) (name, category string) {
	var body struct {
		FileName string `json:"file_name"`
		ImageKey string `json:"image_key"`
	}
	// Malformed content degrades to the per-type fallback name.
	_ = json.Unmarshal([]byte(content), &body)

	switch msgType {
	case larkim.MsgTypeImage:
		name = "图片"
		if body.ImageKey != "" {
			key := body.ImageKey
			if len(key) > 8 {
				key = key[:8]
			}
			name = "图片_" + key
		}
		return name, CategoryImage
	case larkim.MsgTypeMedia:
		name = body.FileName
		if name == "" {
			name = "媒体文件"
		}
		return name, FileCategory(name)
	default:
		name = body.FileName
		if name == "" {
			name = "未命名文件"
		}
		return name, FileCategory(name)
	}
}
