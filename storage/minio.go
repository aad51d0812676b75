package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"Bt1Cut/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
)

// InitMinio 初始化 MinIO 客户端并确保素材桶存在
func InitMinio(cfg *config.Config) error {
	log.Printf("正在连接 MinIO 服务器...")
	log.Printf("Endpoint: %s", cfg.MinioEndpoint)
	log.Printf("Bucket: %s", cfg.MinioBucket)
	if len(cfg.MinioAccessKey) > 4 {
		log.Printf("AccessKey: %s...", cfg.MinioAccessKey[:4])
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("创建 MinIO 客户端失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 检查素材桶是否存在，不存在则创建
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %v", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{
			Region: cfg.MinioRegion,
		})
		if err != nil {
			return fmt.Errorf("创建存储桶失败: %v", err)
		}
		log.Printf("✅ 成功创建存储桶: %s", cfg.MinioBucket)
	} else {
		log.Printf("✅ 存储桶已存在: %s", cfg.MinioBucket)
	}

	minioClient = client
	log.Println("✅ MinIO 客户端初始化成功！")
	return nil
}

// GetMinioClient 获取 MinIO 客户端实例
func GetMinioClient() *minio.Client {
	return minioClient
}

// PutObject 上传素材衍生文件（缩略图/波形/代理）
func PutObject(ctx context.Context, cfg *config.Config, objectName, contentType string, reader io.Reader, size int64) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	_, err := minioClient.PutObject(ctx, cfg.MinioBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("上传对象 %s 失败: %w", objectName, err)
	}
	return nil
}

// GetObject 读取素材衍生文件
func GetObject(ctx context.Context, cfg *config.Config, objectName string) (io.ReadCloser, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}
	obj, err := minioClient.GetObject(ctx, cfg.MinioBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 失败: %w", objectName, err)
	}
	return obj, nil
}

// RemoveObject 删除素材衍生文件
func RemoveObject(ctx context.Context, cfg *config.Config, objectName string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	return minioClient.RemoveObject(ctx, cfg.MinioBucket, objectName, minio.RemoveObjectOptions{})
}

// ListObjects 列出素材桶中的对象，供诊断命令使用
func ListObjects(cfg *config.Config, prefix string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count := 0
	for obj := range minioClient.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("列出对象失败: %w", obj.Err)
		}
		fmt.Printf("  %s  (%d bytes)\n", obj.Key, obj.Size)
		count++
	}
	fmt.Printf("共 %d 个对象\n", count)
	return nil
}

// PrintBucketStats 打印素材桶统计信息
func PrintBucketStats(cfg *config.Config) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var totalSize int64
	count := 0
	for obj := range minioClient.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("统计对象失败: %w", obj.Err)
		}
		totalSize += obj.Size
		count++
	}

	fmt.Printf("存储桶: %s\n", cfg.MinioBucket)
	fmt.Printf("对象数: %d\n", count)
	fmt.Printf("总大小: %.2f MB\n", float64(totalSize)/1024.0/1024.0)
	return nil
}
