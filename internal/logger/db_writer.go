package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "go-marketplace/internal/common/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	AdminID   string
	Caller    string // Function name
}

// logInserter is satisfied by *mongo.Collection
type logInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	sink    logInserter
	logChan chan LogEntry
	appId   string
	done    chan struct{}
	once    sync.Once
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(sink logInserter, appId string) *DBLogWriter {
	writer := &DBLogWriter{
		sink:    sink,
		logChan: make(chan LogEntry, 1000), // Buffer 1000 logs
		appId:   appId,
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop the entry rather than block the request
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and drains the buffer
func (w *DBLogWriter) Close() {
	w.once.Do(func() {
		close(w.done)
	})
}

func (w *DBLogWriter) processLogs() {
	for {
		select {
		case entry := <-w.logChan:
			w.insert(entry)
		case <-w.done:
			for {
				select {
				case entry := <-w.logChan:
					w.insert(entry)
				default:
					return
				}
			}
		}
	}
}

func (w *DBLogWriter) insert(entry LogEntry) {
	record := common_models.Log{
		Message:      entry.Message,
		IpAddress:    entry.IpAddress,
		AdminID:      entry.AdminID,
		Caller:       entry.Caller,
		AppID:        w.appId,
		LogLevelId:   mapLevelToInt(entry.Level),
		CreatedOnUtc: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Errors are ignored so logging never takes the app down
	_, _ = w.sink.InsertOne(ctx, record)
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
