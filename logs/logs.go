package logs

import logging "github.com/ipfs/go-log/v2"

// SetAllLoggers sets the level of every logger and quiets the chatty dependencies.
func SetAllLoggers(level logging.LogLevel) {
	logging.SetAllLoggers(level)
	_ = logging.SetLogLevel("addrutil", "INFO")
	_ = logging.SetLogLevel("dht", "ERROR")
	_ = logging.SetLogLevel("swarm2", "WARN")
	_ = logging.SetLogLevel("connmgr", "WARN")
	_ = logging.SetLogLevel("nat", "INFO")
	_ = logging.SetLogLevel("basichost", "WARN")
	_ = logging.SetLogLevel("rpc", "WARN")
	_ = logging.SetLogLevel("dht/RtRefreshManager", "FATAL")
}
