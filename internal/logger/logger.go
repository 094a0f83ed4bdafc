package logger

import (
    "io"
    "os"
    "time"

    "github.com/natefinch/lumberjack"
    logrus "github.com/sirupsen/logrus"
)

// Setup initializes Logrus with a rotating file sink plus stdout.
func Setup() {
    // 1) Lumberjack for file rotation
    rotator := &lumberjack.Logger{
        Filename:   getLogFile(),
        MaxSize:    10,  // megabytes
        MaxBackups: 7,   // keep up to 7 old files
        MaxAge:     7,   // days
        Compress:   true,
    }

    // 2) Configure Logrus to write to file and stdout
    logrus.SetOutput(io.MultiWriter(os.Stdout, rotator))
    logrus.SetFormatter(&logrus.TextFormatter{
        FullTimestamp:   true,
        TimestampFormat: time.RFC3339,
    })
    logrus.SetLevel(parseLevel())
}

func getLogFile() string {
    if v := os.Getenv("LOG_FILE"); v != "" {
        return v
    }
    return "./logs/fleetops.log"
}

func parseLevel() logrus.Level {
    lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
    if err != nil {
        return logrus.InfoLevel
    }
    return lvl
}

// GormLogger returns the standard Logrus logger for GORM
func GormLogger() *logrus.Logger {
    return logrus.StandardLogger()
}
