// internal/utils/logger/config.go
package logger

// Config описывает вывод логов: консоль всегда, файл с ротацией если задан LogFile.
type Config struct {
	LogFile     string
	MaxSize     int  // мегабайты
	MaxAge      int  // дни
	MaxBackups  int  // количество файлов
	Compress    bool // сжимать ротированные файлы
	Development bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:    "minter.log",
		MaxSize:    50,
		MaxAge:     14,
		MaxBackups: 3,
		Compress:   true,
	}
}
