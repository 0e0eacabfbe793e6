package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hd2m/hd2m/internal/logger"
	"github.com/hd2m/hd2m/pkg/auto/input"
	"github.com/hd2m/hd2m/pkg/auto/screen"
	"github.com/hd2m/hd2m/pkg/config"
	"github.com/hd2m/hd2m/pkg/process"
	"github.com/hd2m/hd2m/pkg/stratagem"
	"github.com/hd2m/hd2m/pkg/stratagem/search"
	"github.com/hd2m/hd2m/pkg/vision/cv"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// options 命令行参数
type options struct {
	imagePath    string
	watch        bool
	interval     time.Duration
	replay       int
	annotatePath string
	dumpPath     string
	waitGame     bool
	similar      int
}

func main() {
	var (
		imagePath    = flag.String("image", "", "识别图片文件而不是截屏")
		watch        = flag.Bool("watch", false, "持续截屏识别，直到 Ctrl+C")
		interval     = flag.Duration("interval", 500*time.Millisecond, "持续识别的间隔")
		replay       = flag.Int("replay", 0, "回放第 N 行指令 (从 1 开始)")
		annotatePath = flag.String("annotate", "", "保存标注图片的路径")
		dumpPath     = flag.String("dump", "", "保存截屏原图的路径")
		templateDir  = flag.String("templates", "", "模板目录")
		threshold    = flag.Float64("threshold", 0, "匹配阈值 (0-1)")
		configDir    = flag.String("config", "", "配置目录 (默认 ~/.hd2m)")
		waitGame     = flag.Bool("wait", false, "截屏前等待游戏进程启动")
		similar      = flag.Int("similar", -1, "持续识别时跳过哈希距离 <= N 的相似帧 (-1 关闭)")
		saveConfig   = flag.Bool("save", false, "保存配置到本地")
		logLevel     = flag.String("log-level", "", "日志级别 (DEBUG/INFO/WARN/ERROR)")
		showVersion  = flag.Bool("version", false, "显示版本信息")
		showHelp     = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return
	}

	// 加载配置
	manager := config.GetDefaultManager()
	if *configDir != "" {
		manager = config.NewManagerWithDir(*configDir)
	}
	cfg, err := manager.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败: %v\n", err)
	}
	cfg.ApplyEnv()

	// 命令行参数优先级高于配置文件和环境变量
	if *templateDir != "" {
		cfg.TemplateDir = *templateDir
	}
	if *threshold > 0 {
		cfg.Threshold = float32(*threshold)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("[ERROR] 配置无效: %v\n", err)
		os.Exit(1)
	}

	// 保存配置
	if *saveConfig {
		if err := manager.Save(cfg); err != nil {
			fmt.Printf("[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Printf("[INFO] 配置已保存到 %s\n", manager.GetConfigFile())
		}
	}

	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	log.SetModule("hd2m")
	if cfg.LogFile != "" {
		if err := log.SetFile(true, cfg.LogFile); err != nil {
			fmt.Printf("[WARN] 打开日志文件失败: %v\n", err)
		}
	}
	defer log.Close()

	opts := options{
		imagePath:    *imagePath,
		watch:        *watch,
		interval:     *interval,
		replay:       *replay,
		annotatePath: *annotatePath,
		dumpPath:     *dumpPath,
		waitGame:     *waitGame,
		similar:      *similar,
	}

	for _, w := range flagWarnings(opts) {
		log.Warn("%s", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("%v", err)
		os.Exit(1)
	}
}

// run 加载模板并执行一次或持续识别
func run(ctx context.Context, cfg *config.Config, opts options, log *logger.Logger) error {
	templates, err := stratagem.LoadTemplateDir(cfg.TemplateDir)
	if err != nil {
		return err
	}
	base := image.Pt(cfg.BaseScreenWidth, cfg.BaseScreenHeight)
	recognizer, err := stratagem.NewManagerWithTemplates(templates, base, searchOptions(cfg), stratagem.WithLogger(log))
	if err != nil {
		return fmt.Errorf("创建识别器失败: %w", err)
	}

	var replayer *input.Replayer
	if opts.replay > 0 {
		replayer, err = input.NewReplayer(cfg.KeyBindings,
			input.WithMenuKey(cfg.MenuKey),
			input.WithKeyDelay(time.Duration(cfg.KeyDelayMs)*time.Millisecond))
		if err != nil {
			return err
		}
	}

	// 图片模式只识别一次
	if opts.imagePath != "" {
		frame, err := cv.ReadImage(opts.imagePath)
		if err != nil {
			return err
		}
		_, err = recognize(ctx, recognizer, frame, opts, nil, log)
		return err
	}

	sw, sh := screen.GetScreenSize()
	log.Debug("屏幕 %dx%d, 显示器数量 %d", sw, sh, screen.GetDisplayCount())

	game := findGame(ctx, cfg.GameProcess, opts.waitGame, log)
	if game != nil {
		log.Info("游戏进程: %s (PID=%d)", game.Name, game.PID)
	}

	frame, err := screen.CaptureScreen()
	if err != nil {
		return err
	}
	rows, err := recognize(ctx, recognizer, frame, opts, replayGate(replayer, game, log), log)
	if err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	fmt.Println("[INFO] 按 Ctrl+C 退出")
	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	var filter *screen.FrameFilter
	if opts.similar >= 0 {
		filter = screen.NewFrameFilter(opts.similar)
		filter.Changed(frame)
	}

	last := rowsKey(rows)
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			fmt.Println("[INFO] 已退出")
			return nil
		case <-ticker.C:
		}

		if gameExited(game) {
			log.Warn("游戏进程 %s (PID=%d) 已退出，停止识别", game.Name, game.PID)
			return nil
		}

		frame, err := screen.CaptureScreen()
		if err != nil {
			log.Warn("%v", err)
			continue
		}
		if filter != nil && !filter.Changed(frame) {
			continue
		}
		rows, err := recognizer.Run(frame, frame.Bounds().Dx(), frame.Bounds().Dy())
		if err != nil {
			log.Warn("识别失败: %v", err)
			continue
		}
		// 只在识别结果变化时输出
		if key := rowsKey(rows); key != last {
			last = key
			printRows(rows)
			if replayer != nil {
				replaySelected(ctx, rows, opts.replay, replayGate(replayer, game, log), log)
			}
		}
	}
}

// recognize 识别一帧并处理保存、标注与回放
func recognize(ctx context.Context, m *stratagem.Manager, frame *image.RGBA, opts options, replayer *input.Replayer, log *logger.Logger) ([]search.Sequence, error) {
	w, h := frame.Bounds().Dx(), frame.Bounds().Dy()

	if opts.dumpPath != "" {
		if err := screen.SaveFrame(frame, opts.dumpPath); err != nil {
			log.Warn("%v", err)
		}
	}

	rows, err := m.Run(frame, w, h)
	if err != nil {
		return nil, fmt.Errorf("识别失败: %w", err)
	}
	printRows(rows)
	logRows(log, rows)

	if opts.annotatePath != "" {
		size, err := m.ActiveTemplateSize()
		if err != nil {
			return rows, err
		}
		if err := stratagem.SaveAnnotated(opts.annotatePath, frame, rows, size); err != nil {
			log.Warn("保存标注失败: %v", err)
		} else {
			log.Info("标注已保存到 %s", opts.annotatePath)
		}
	}

	if replayer != nil {
		replaySelected(ctx, rows, opts.replay, replayer, log)
	}
	return rows, nil
}

// replaySelected 回放第 n 行
func replaySelected(ctx context.Context, rows []search.Sequence, n int, replayer *input.Replayer, log *logger.Logger) {
	if replayer == nil {
		return
	}
	if n < 1 || n > len(rows) {
		log.Warn("没有第 %d 行指令 (共 %d 行)", n, len(rows))
		return
	}
	row := rows[n-1]
	if err := replayer.Replay(ctx, row.Directions()); err != nil {
		log.Warn("回放失败: %v", err)
		return
	}
	log.Info("已回放第 %d 行: %s", n, row)
}

// replayGate 游戏不在前台时不回放
func replayGate(replayer *input.Replayer, game *process.ProcessInfo, log *logger.Logger) *input.Replayer {
	if replayer == nil || game == nil {
		return replayer
	}
	if !process.IsForeground(game.PID) {
		log.Warn("游戏窗口不在前台，跳过回放")
		return nil
	}
	return replayer
}

// findGame 查找游戏进程，wait 为 true 时等待其启动
func findGame(ctx context.Context, name string, wait bool, log *logger.Logger) *process.ProcessInfo {
	if name == "" {
		return nil
	}
	if wait {
		log.Info("等待游戏进程 %s ...", name)
		info, err := process.WaitForGame(ctx, name, time.Second)
		if err != nil {
			log.Warn("等待游戏进程失败: %v", err)
			return nil
		}
		return info
	}
	info, err := process.FindGame(name)
	if err != nil {
		log.Warn("%v，将直接截取当前屏幕", err)
		return nil
	}
	return info
}

// gameExited 判断启动时找到的游戏进程是否已退出
func gameExited(game *process.ProcessInfo) bool {
	return game != nil && !process.IsProcessRunning(game.PID)
}

// flagWarnings 返回不会按预期生效的参数组合
func flagWarnings(opts options) []string {
	var warnings []string
	if opts.imagePath != "" {
		if opts.replay > 0 {
			warnings = append(warnings, "图片模式不回放按键，忽略 -replay")
		}
		if opts.watch {
			warnings = append(warnings, "图片模式只识别一次，忽略 -watch")
		}
		if opts.dumpPath != "" {
			warnings = append(warnings, "图片模式没有截屏，-dump 将保存输入图片")
		}
	}
	if opts.watch && opts.imagePath == "" && (opts.dumpPath != "" || opts.annotatePath != "") {
		warnings = append(warnings, "-dump 和 -annotate 只作用于第一帧")
	}
	return warnings
}

// searchOptions 将配置转换为识别参数
func searchOptions(cfg *config.Config) stratagem.SearchOptions {
	return stratagem.SearchOptions{
		Threshold:         cfg.Threshold,
		WindowHeight:      cfg.WindowHeight,
		DuplicateDistance: cfg.DuplicateDistance,
		NoMask:            cfg.DisableMask,
		EdgeDetect:        cfg.EdgeDetect,
	}
}

func printRows(rows []search.Sequence) {
	if len(rows) == 0 {
		fmt.Println("未识别到战备指令")
		return
	}
	for i, row := range rows {
		fmt.Printf("%d: %s\n", i+1, row)
	}
}

// logRows 以结构化字段记录每行的位置和最低置信度
func logRows(log *logger.Logger, rows []search.Sequence) {
	zl := log.Zerolog()
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		minConf := row[0].Confidence
		for _, d := range row[1:] {
			minConf = min(minConf, d.Confidence)
		}
		zl.Debug().
			Int("row", i+1).
			Str("commands", row.String()).
			Int("x", row[0].Position.X).
			Int("y", row[0].Position.Y).
			Float32("min_confidence", minConf).
			Msg("指令行")
	}
}

func rowsKey(rows []search.Sequence) string {
	key := ""
	for _, row := range rows {
		key += row.String() + "|"
	}
	return key
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("hd2m v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("hd2m - 战备指令识别工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  hd2m [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -image string       识别图片文件而不是截屏")
	fmt.Println("  -watch              持续截屏识别，直到 Ctrl+C")
	fmt.Println("  -interval duration  持续识别的间隔 (默认 500ms)")
	fmt.Println("  -replay int         回放第 N 行指令")
	fmt.Println("  -annotate string    保存标注图片的路径")
	fmt.Println("  -dump string        保存截屏原图的路径")
	fmt.Println("  -templates string   模板目录")
	fmt.Println("  -threshold float    匹配阈值 (0-1)")
	fmt.Println("  -config string      配置目录")
	fmt.Println("  -wait               截屏前等待游戏进程启动")
	fmt.Println("  -similar int        持续识别时跳过相似帧的哈希距离 (默认 -1 关闭)")
	fmt.Println("  -save               保存配置到本地")
	fmt.Println("  -log-level string   日志级别")
	fmt.Println("  -version            显示版本信息")
	fmt.Println("  -help               显示帮助信息")
	fmt.Println()
	fmt.Println("说明:")
	fmt.Println("  -image 模式只识别一次，不回放按键")
	fmt.Println("  -watch 模式下 -dump 和 -annotate 只保存第一帧")
	fmt.Println("  -watch 模式下游戏进程退出后自动停止")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 识别一张截图并保存标注")
	fmt.Println("  hd2m -image shot.png -annotate out.png")
	fmt.Println()
	fmt.Println("  # 持续识别并回放第一行指令")
	fmt.Println("  hd2m -watch -replay 1")
	fmt.Println()
	fmt.Println("  # 保存模板目录和阈值")
	fmt.Println("  hd2m -templates ./templates -threshold 0.98 -save")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
