// Package journal 是检查结果的追加写日志文件，只写不读。
package journal

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const fileTimeLayout = "20060102_150405"

// FileName 根据进程启动时间生成日志文件名，例如 kline_monitor_20240101_000300.log
func FileName(prefix string, start time.Time) string {
	return prefix + "_" + start.Format(fileTimeLayout) + ".log"
}

// Journal 是一个只追加的文本文件
type Journal struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// Open 以追加模式打开 (必要时创建) dir/name
func Open(dir, name string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create journal dir %s", dir)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", path)
	}
	return &Journal{file: f, path: path}, nil
}

// Path 返回日志文件路径
func (j *Journal) Path() string {
	return j.path
}

// Append 将一组行作为一个整体写入，每行末尾补换行符
// 一次检查的所有行通过一次 Write 写入，不会与其他写入交错
func (j *Journal) Append(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return errors.New("journal is closed")
	}
	if _, err := j.file.WriteString(b.String()); err != nil {
		return errors.Wrapf(err, "append to journal %s", j.path)
	}
	return nil
}

// Close 关闭文件，之后的 Append 返回错误
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
