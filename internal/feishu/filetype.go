package feishu

import (
	"path/filepath"
	"strings"
)

// CategoryImage is the bucket for image messages, which carry no file name.
const CategoryImage = "图片"

// CategoryOther is the fallback bucket for unknown extensions.
const CategoryOther = "其他文件"

// categoryByExt maps lowercased file extensions to display buckets used by
// the file-list summary.
var categoryByExt = map[string]string{
	".doc":  "Word文档",
	".docx": "Word文档",
	".xls":  "Excel表格",
	".xlsx": "Excel表格",
	".csv":  "Excel表格",
	".ppt":  "PPT演示",
	".pptx": "PPT演示",
	".pdf":  "PDF文档",
	".txt":  "文本文件",
	".md":   "文本文件",
	".log":  "文本文件",
	".jpg":  CategoryImage,
	".jpeg": CategoryImage,
	".png":  CategoryImage,
	".gif":  CategoryImage,
	".bmp":  CategoryImage,
	".webp": CategoryImage,
	".svg":  CategoryImage,
	".mp4":  "视频",
	".avi":  "视频",
	".mov":  "视频",
	".wmv":  "视频",
	".flv":  "视频",
	".mkv":  "视频",
	".webm": "视频",
	".mp3":  "音频",
	".wav":  "音频",
	".flac": "音频",
	".aac":  "音频",
	".m4a":  "音频",
	".wma":  "音频",
	".ogg":  "音频",
	".zip":  "压缩包",
	".rar":  "压缩包",
	".7z":   "压缩包",
	".tar":  "压缩包",
	".gz":   "压缩包",
	".js":   "代码文件",
	".ts":   "代码文件",
	".py":   "代码文件",
	".java": "代码文件",
	".go":   "代码文件",
	".c":    "代码文件",
	".cpp":  "代码文件",
	".html": "代码文件",
	".css":  "代码文件",
	".json": "代码文件",
	".xml":  "代码文件",
}

// FileCategory buckets a file name by extension for display grouping.
func FileCategory(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if cat, ok := categoryByExt[ext]; ok {
		return cat
	}
	return CategoryOther
}
