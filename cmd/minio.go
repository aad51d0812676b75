package cmd

import (
	"fmt"
	"log"

	"Bt1Cut/config"
	"Bt1Cut/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioStats  bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO素材桶管理",
	Long:  `查看MinIO素材桶中的缩略图、波形与代理文件，支持按前缀列出和查看统计信息。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始连接MinIO服务器...")

		cfg := config.Load()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}
		fmt.Println("MinIO连接成功！")

		if minioStats {
			fmt.Println("\n获取素材桶统计信息...")
			if err := storage.PrintBucketStats(cfg); err != nil {
				log.Fatalf("获取素材桶统计信息失败: %v", err)
			}
		} else {
			fmt.Printf("\n列出素材桶中的文件 (前缀: %s)...\n", minioPrefix)
			if err := storage.ListObjects(cfg, minioPrefix); err != nil {
				log.Fatalf("列出文件失败: %v", err)
			}
		}

		fmt.Println("\nMinIO操作完成！")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示素材桶统计信息")

	minioCmd.Example = `  # 列出所有素材文件
  1cut_server minio

  # 按前缀过滤
  1cut_server minio -p "thumbs/"

  # 显示素材桶统计信息
  1cut_server minio -s`
}
