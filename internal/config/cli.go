package config

import "github.com/alecthomas/kong"

// Cli holds command line args, flags and env vars
type Cli struct {
	Version kong.VersionFlag

	LogLevel   string `kong:"name=log-level,env=LOG_LEVEL,default=info,help='Set log level.'"`
	LogJSON    bool   `kong:"name=log-json,env=LOG_JSON,default=false,help='Enable JSON logging output.'"`
	LogCaller  bool   `kong:"name=log-caller,env=LOG_CALLER,default=false,help='Add file:line of the caller to log output.'"`
	LogNoColor bool   `kong:"name=log-nocolor,env=LOG_NOCOLOR,default=false,help='Disable colorized output.'"`

	List       bool `kong:"name=list,default=false,help='List archive entries without extracting.'"`
	NoProgress bool `kong:"name=no-progress,default=false,help='Disable the progress bar.'"`
	RmDist     bool `kong:"name=rm-dist,default=false,help='Removes dist folder.'"`

	Source string `kong:"arg,required,name=source,type=path,help='SOR archive to extract. (eg. ./backup.sor)'"`
	Dist   string `kong:"arg,optional,name=dist,type=path,help='Dist folder. (eg. ./dist)'"`
}

// Meta holds application details
type Meta struct {
	ID      string
	Name    string
	Desc    string
	URL     string
	Author  string
	Version string
}
