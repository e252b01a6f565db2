package errs

const (
	ErrCode_OK            = 0
	ErrCode_Unknown       = 1
	ErrCode_Unmarshal     = 2
	ErrCode_Overloaded    = 100
	ErrCode_Shutdown      = 101
	ErrCode_TooLong       = 102
	ErrCode_NoCapacity    = 103
	ErrCode_TimeoutClosed = 104
	ErrCode_InvalidConfig = 105
)

var (
	Unknown   = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	Unmarshal = CreateCodeError(ErrCode_Unmarshal, "UNMARSHAL")

	// 请求通道已满, 调用方应唤醒任务并重试
	Overloaded = CreateCodeError(ErrCode_Overloaded, "TIMER_OVERLOADED")
	// worker 已停止
	Shutdown      = CreateCodeError(ErrCode_Shutdown, "TIMER_SHUTDOWN")
	TooLong       = CreateCodeError(ErrCode_TooLong, "TIMEOUT_TOO_LONG")
	NoCapacity    = CreateCodeError(ErrCode_NoCapacity, "TIMER_NO_CAPACITY")
	TimeoutClosed = CreateCodeError(ErrCode_TimeoutClosed, "TIMEOUT_CLOSED")
	InvalidConfig = CreateCodeError(ErrCode_InvalidConfig, "INVALID_CONFIG")
)
