package tools

import (
	"os"
)

func CreateDirectoryIfDoesNotExist(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		err := os.MkdirAll(directory, 0777)
		if err != nil {
			return err
		}
	}
	return nil
}

// Tells whether the given path exists, regardless of its type
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
