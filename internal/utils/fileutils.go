// Package utils provides file handling helpers shared by the upload
// endpoints: media type detection and safe destination paths.
package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AudioExtensions contains the audio formats accepted for upload
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
	".m4a":  true,
	".opus": true,
	".aiff": true,
}

// VideoExtensions contains the video formats accepted for upload
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".m4v":  true,
	".mkv":  true,
	".avi":  true,
}

// IsAudioFile reports whether the filename carries an accepted audio
// extension
func IsAudioFile(filename string) bool {
	return AudioExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsVideoFile reports whether the filename carries an accepted video
// extension
func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// UniqueUploadPath ensures dir exists and returns a collision-free
// destination that keeps the original extension. Uploaded names never
// reach the filesystem.
func UniqueUploadPath(dir, originalName string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	return filepath.Join(dir, uuid.New().String()+ext), nil
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
