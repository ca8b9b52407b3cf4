package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Store 对象存储封装
type Store struct {
	client *minio.Client
	bucket string
}

var globalStore *Store

// InitMinIO 初始化MinIO客户端并确保bucket存在
func InitMinIO(cfg *config.ObjectStorageConfig) error {
	if cfg == nil || cfg.Endpoint == "" {
		logger.Warn("MinIO未配置，媒体文件将不会持久化")
		return nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("检查bucket失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("创建bucket失败: %w", err)
		}
	}

	globalStore = &Store{
		client: client,
		bucket: cfg.Bucket,
	}

	logger.Info("MinIO初始化成功",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))
	return nil
}

// GetStore 获取全局存储实例，未配置时返回nil
func GetStore() *Store {
	return globalStore
}

// Upload 上传对象并返回存储路径
func (s *Store) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("对象存储未初始化")
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传对象失败: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.bucket, objectName), nil
}

// PresignedURL 生成临时下载链接
func (s *Store) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("对象存储未初始化")
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成下载链接失败: %w", err)
	}
	return u.String(), nil
}

// Remove 删除对象
func (s *Store) Remove(ctx context.Context, objectName string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("对象存储未初始化")
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}
