package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shibukawa/configdir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const logsDirectory = "logs"

const VendorName = "six78"
const ApplicationName = "xidach"

const (
	TransportRelay = "relay"
	TransportWaku  = "waku"
)

const DefaultBrokerURL = "ws://localhost:8787"

var fleet string
var nameserver string
var playerName string
var debug bool
var anonymous bool
var transportName string
var brokerURL string
var wakuStaticNodes []string
var wakuLightMode bool
var wakuDiscV5 bool
var wakuDnsDiscovery bool

var Logger *zap.Logger
var LogFilePath string

func init() {
	Logger = zap.NewNop()
}

// BindFlags registers the flags shared by every command.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&playerName, "name", "", "Player name")
	flags.BoolVar(&debug, "debug", false, "Show debug info")
	flags.BoolVar(&anonymous, "anonymous", false, "Anonymous mode, nothing is stored")
	flags.StringVar(&transportName, "transport", TransportRelay, "Transport: relay or waku")
	flags.StringVar(&brokerURL, "broker", "", "Relay broker url")
	flags.StringVar(&fleet, "waku.fleet", "shards.test", "Waku fleet name")
	flags.StringVar(&nameserver, "waku.nameserver", "", "Waku nameserver")
	flags.StringArrayVar(&wakuStaticNodes, "waku.staticnode", nil, "Waku static node multiaddress")
	flags.BoolVar(&wakuLightMode, "waku.lightmode", false, "Waku lightpush/filter mode")
	flags.BoolVar(&wakuDiscV5, "waku.discv5", true, "Enable DiscV5 discovery")
	flags.BoolVar(&wakuDnsDiscovery, "waku.dnsdiscovery", true, "Enable DNS discovery")
}

func SetupLogger() {
	var c zap.Config
	if debug {
		c = zap.NewDevelopmentConfig()
	} else {
		c = zap.NewProductionConfig()
	}

	LogFilePath = createLogFile()
	c.OutputPaths = []string{LogFilePath}
	c.Development = false
	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	Logger = logger
}

func createLogFile() string {
	name := fmt.Sprintf("%s-%s.log", ApplicationName, time.Now().UTC().Format(time.RFC3339))
	name = strings.Replace(name, ":", "-", -1)

	configDirs := configdir.New(VendorName, ApplicationName)
	folders := configDirs.QueryFolders(configdir.Global)
	path := filepath.Join(folders[0].Path, logsDirectory, name)

	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		panic(err)
	}

	if _, err := os.Create(path); err != nil {
		panic(err)
	}

	return path
}

func GeneratePlayerName() string {
	return fmt.Sprintf("player-%d", time.Now().Unix())
}

func Fleet() string {
	return fleet
}

func Nameserver() string {
	return nameserver
}

func PlayerName() string {
	return playerName
}

func Debug() bool {
	return debug
}

func Anonymous() bool {
	return anonymous
}

func Transport() string {
	return transportName
}

// BrokerURL prefers the flag over the environment.
func BrokerURL(env Env) string {
	if brokerURL != "" {
		return brokerURL
	}
	if env.BrokerURL != "" {
		return env.BrokerURL
	}
	return DefaultBrokerURL
}

func WakuStaticNodes() []string {
	return wakuStaticNodes
}

func WakuLightMode() bool {
	return wakuLightMode
}

func WakuDiscV5() bool {
	return wakuDiscV5
}

func WakuDnsDiscovery() bool {
	return wakuDnsDiscovery
}
