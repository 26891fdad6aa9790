package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func GetFilename(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OpenFile creates <outputPath><subdir>/<name><ext> when makeDir is set and
// <outputPath><name>_<subdir><ext> otherwise. ext defaults to ".txt".
func OpenFile(makeDir bool, outputPath string, fileSuffix, modelName string, ext ...string) (*os.File, error) {
	extension := ".txt"
	if len(ext) > 0 {
		extension = ext[0]
	}
	if makeDir && fileSuffix != "" && fileSuffix != "." {
		if err := os.MkdirAll(outputPath+fileSuffix, 0750); err != nil {
			return nil, err
		}
		return os.Create(outputPath + fileSuffix + "/" + modelName + extension)
	}
	if outputPath != "" {
		if err := os.MkdirAll(outputPath, 0750); err != nil {
			return nil, err
		}
	}
	if fileSuffix == "" {
		return os.Create(outputPath + modelName + extension)
	}
	return os.Create(outputPath + modelName + "_" + fileSuffix + extension)
}
