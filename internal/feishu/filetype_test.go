package feishu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want string
	}{
		{"报告.docx", "Word文档"},
		{"数据.XLSX", "Excel表格"},
		{"slides.pptx", "PPT演示"},
		{"合同.pdf", "PDF文档"},
		{"README.md", "文本文件"},
		{"debug.log", "文本文件"},
		{"photo.JPG", CategoryImage},
		{"logo.svg", CategoryImage},
		{"demo.mp4", "视频"},
		{"clip.mkv", "视频"},
		{"stream.webm", "视频"},
		{"voice.mp3", "音频"},
		{"memo.m4a", "音频"},
		{"track.ogg", "音频"},
		{"backup.tar", "压缩包"},
		{"main.go", "代码文件"},
		{"feed.xml", "代码文件"},
		{"unknown.xyz", CategoryOther},
		{"noextension", CategoryOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FileCategory(tc.name), tc.name)
	}
}

func TestAttachmentInfo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msgType      string
		content      string
		wantName     string
		wantCategory string
	}{
		{"file", `{"file_key":"fk","file_name":"方案.pdf"}`, "方案.pdf", "PDF文档"},
		{"file", `{"file_key":"fk"}`, "未命名文件", CategoryOther},
		{"file", `not json`, "未命名文件", CategoryOther},
		{"media", `{"file_key":"fk","file_name":"song.mp3"}`, "song.mp3", "音频"},
		{"media", `{"file_key":"fk","file_name":"demo.mp4"}`, "demo.mp4", "视频"},
		{"media", `{"file_key":"fk"}`, "媒体文件", CategoryOther},
		{"image", `{"image_key":"img_v2_abcdef12345"}`, "图片_img_v2_a", CategoryImage},
		{"image", `{"image_key":"img"}`, "图片_img", CategoryImage},
		{"image", `{}`, "图片", CategoryImage},
	}
	for _, tc := range cases {
		name, category := AttachmentInfo(tc.msgType, tc.content)
		assert.Equal(t, tc.wantName, name, tc.msgType+" "+tc.content)
		assert.Equal(t, tc.wantCategory, category, tc.msgType+" "+tc.content)
	}
}
