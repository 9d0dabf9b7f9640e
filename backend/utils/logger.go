package utils

import (
	"io"
	"log"
	"os"
)

// InitLogger инициализирует и возвращает логгер
func InitLogger() *log.Logger {
	return newLogger(os.Stdout)
}

func newLogger(out io.Writer) *log.Logger {
	return log.New(out, "[LMS] ", log.LstdFlags|log.Lshortfile|log.LUTC)
}
