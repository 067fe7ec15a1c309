package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"khatib-jumat/internal/service"
	"khatib-jumat/pkg/database"
)

// migrateCmd 执行数据库迁移后退出
func migrateCmd(configPath *string) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
			if err != nil {
				return fmt.Errorf("数据库连接失败: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
			}
			defer sqlDB.Close()

			if down {
				return database.RollbackMigration(sqlDB, logger)
			}
			return database.RunMigrations(sqlDB, logger)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "回滚最近一次迁移")
	return cmd
}

// slotsCmd 打印某年份全部周五档期，不访问数据库
func slotsCmd() *cobra.Command {
	var (
		year   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "列出某年份的全部周五",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year < 1900 || year > 9999 {
				return service.ErrInvalidYear
			}
			slots := service.GenerateFridays(year)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(slots)
			}
			return printSlots(cmd.OutOrStdout(), year)
		},
	}
	cmd.Flags().IntVar(&year, "year", 2026, "年份")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func printSlots(out io.Writer, year int) error {
	groups := service.GroupByMonth(service.MergeRegistrations(service.GenerateFridays(year), nil))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	total := 0
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t\t\n", g.MonthName)
		for _, s := range g.Slots {
			fmt.Fprintf(tw, "  %s\t%s\tJumat ke-%d\n", s.ISODate, s.DisplayLabel, s.WeekOfMonthOrdinal)
			total++
		}
	}
	fmt.Fprintf(tw, "Total\t%d\t\n", total)
	return tw.Flush()
}
