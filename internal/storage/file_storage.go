// internal/storage/file_storage.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Corphon/NarrativeDNA/internal/utils"
)

// ErrNotExist is returned when a file or directory is missing.
var ErrNotExist = fs.ErrNotExist

const (
	defaultCacheExpiry   = 5 * time.Minute
	defaultMaxCacheSize  = 100
	cacheCleanupInterval = 2 * time.Minute
)

// FileStorage 提供文件存储服务
type FileStorage struct {
	BaseDir string

	// 并发控制
	fileLocks sync.Map // 文件级别锁 path -> *sync.RWMutex

	// 简单缓存
	cache        map[string]*CacheEntry
	cacheMutex   sync.RWMutex
	cacheExpiry  time.Duration
	maxCacheSize int

	stop     chan struct{}
	stopOnce sync.Once
}

// CacheEntry 缓存条目
type CacheEntry struct {
	Data      []byte
	Timestamp time.Time
}

// NewFileStorage 创建文件存储服务
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	s := &FileStorage{
		BaseDir:      baseDir,
		cache:        make(map[string]*CacheEntry),
		cacheExpiry:  defaultCacheExpiry,
		maxCacheSize: defaultMaxCacheSize,
		stop:         make(chan struct{}),
	}

	// 启动缓存清理
	go s.cacheCleanupLoop()

	return s, nil
}

// Close stops the cache cleanup loop.
func (s *FileStorage) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// 获取文件锁
func (s *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := s.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// resolve joins parts under BaseDir and refuses paths that escape it.
func (s *FileStorage) resolve(parts ...string) (string, error) {
	full := filepath.Join(append([]string{s.BaseDir}, parts...)...)
	rel, err := filepath.Rel(s.BaseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("路径越界: %s", filepath.Join(parts...))
	}
	return full, nil
}

// SaveTextFile 原子性保存文件（临时文件 + 重命名）
func (s *FileStorage) SaveTextFile(dirPath, filename string, content []byte) error {
	fullDirPath, err := s.resolve(dirPath)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(fullDirPath, filename)

	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(fullDirPath, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("保存临时文件失败: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			utils.GetLogger().Warn("failed to clean up temporary file", map[string]interface{}{
				"path":  tempPath,
				"error": removeErr.Error(),
			})
		}
		return fmt.Errorf("保存文件失败: %w", err)
	}

	s.invalidateCache(fullPath)
	return nil
}

// SaveJSONFile 保存JSON文件
func (s *FileStorage) SaveJSONFile(dirPath, filename string, data interface{}) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}
	return s.SaveTextFile(dirPath, filename, content)
}

// LoadTextFile 读取文本文件，命中缓存时不访问磁盘
func (s *FileStorage) LoadTextFile(dirPath, filename string) ([]byte, error) {
	fullPath, err := s.resolve(dirPath, filename)
	if err != nil {
		return nil, err
	}

	if data, ok := s.cached(fullPath); ok {
		return data, nil
	}

	lock := s.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	// 双重检查缓存
	if data, ok := s.cached(fullPath); ok {
		return data, nil
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	s.updateCache(fullPath, content)
	return content, nil
}

// LoadJSONFile 读取并解析JSON文件
func (s *FileStorage) LoadJSONFile(dirPath, filename string, v interface{}) error {
	content, err := s.LoadTextFile(dirPath, filename)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

// FileExists 检查文件是否存在
func (s *FileStorage) FileExists(dirPath, filename string) bool {
	fullPath, err := s.resolve(dirPath, filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// DeleteFile 删除文件
func (s *FileStorage) DeleteFile(dirPath, filename string) error {
	fullPath, err := s.resolve(dirPath, filename)
	if err != nil {
		return err
	}

	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("删除文件失败: %w", err)
	}

	s.invalidateCache(fullPath)
	return nil
}

// ListFiles 列出目录下带指定扩展名的文件名，按名称排序。目录不存在时返回空列表。
func (s *FileStorage) ListFiles(dirPath, ext string) ([]string, error) {
	fullPath, err := s.resolve(dirPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取目录失败: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ext) {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// ListDirs 列出目录下的所有子目录
func (s *FileStorage) ListDirs(dirPath string) ([]string, error) {
	fullPath, err := s.resolve(dirPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("读取目录失败: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

func (s *FileStorage) cached(path string) ([]byte, bool) {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	if entry, ok := s.cache[path]; ok && time.Since(entry.Timestamp) < s.cacheExpiry {
		return entry.Data, true
	}
	return nil, false
}

func (s *FileStorage) updateCache(path string, data []byte) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.cache[path] = &CacheEntry{Data: data, Timestamp: time.Now()}
	s.evictOldestLocked()
}

// evictOldestLocked trims the cache to maxCacheSize, oldest entries first.
func (s *FileStorage) evictOldestLocked() {
	excess := len(s.cache) - s.maxCacheSize
	if excess <= 0 {
		return
	}

	keys := make([]string, 0, len(s.cache))
	for key := range s.cache {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return s.cache[a].Timestamp.Compare(s.cache[b].Timestamp)
	})
	for _, key := range keys[:excess] {
		delete(s.cache, key)
	}
}

func (s *FileStorage) cacheCleanupLoop() {
	ticker := time.NewTicker(cacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanupExpiredCache()
		}
	}
}

// 清理过期缓存
func (s *FileStorage) cleanupExpiredCache() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	now := time.Now()
	for path, entry := range s.cache {
		if now.Sub(entry.Timestamp) > s.cacheExpiry {
			delete(s.cache, path)
		}
	}
	s.evictOldestLocked()
}

// invalidateCache 清除指定路径的缓存
func (s *FileStorage) invalidateCache(path string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	delete(s.cache, path)
}
