package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams      = orz.NewError(10400, "参数无效")
	ErrSignalNotFound     = orz.NewError(10404, "信号不存在")
	ErrSignalNotActive    = orz.NewError(10001, "信号已关闭，不允许再次变更状态")
	ErrInvalidStatus      = orz.NewError(10002, "无效的信号状态")
	ErrSymbolNotSupported = orz.NewError(10003, "不支持的交易对")
	ErrScanInProgress     = orz.NewError(10004, "扫描正在进行中")
)
