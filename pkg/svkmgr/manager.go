package svkmgr

import (
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/storageresearch/svk/pkg/httpstore"
	"github.com/storageresearch/svk/pkg/s3store"
	"github.com/storageresearch/svk/pkg/svk"
)

// SvkManager bundles the configuration, logger and storage provider for one
// verification run. Commands (and embedders) construct one manager and drive
// everything through it.
type SvkManager struct {
	Store  svk.StorageService
	Logger svk.Logger
	Cfg    *viper.Viper

	artifactDir string
}

// NewManager builds a manager from the user-provided options. Recognized
// options: "config-file" (string, path to an svk config), "logger"
// (svk.Logger, for embedding in other tools), "server-url" and "mode"
// (strings, overriding their config keys).
func NewManager(userCfg map[string]interface{}) (*SvkManager, error) {
	var err error
	mgr := &SvkManager{}

	if cfgPathRaw, ok := userCfg["config-file"]; ok {
		if cfgPath, ok := cfgPathRaw.(string); ok {
			err = mgr.initConfig(&cfgPath)
		} else {
			return nil, errors.New("option 'config-file' must be of type string")
		}
	} else {
		err = mgr.initConfig(nil)
	}
	if err != nil {
		return nil, err
	}

	if loggerRaw, ok := userCfg["logger"]; ok {
		if logger, ok := loggerRaw.(svk.Logger); ok {
			mgr.Logger = logger
		} else {
			return nil, errors.New("option 'logger' must satisfy svk.Logger")
		}
	} else {
		mgr.Logger = logrus.New()
	}

	for _, key := range []string{"server-url", "mode"} {
		if raw, ok := userCfg[key]; ok {
			val, ok := raw.(string)
			if !ok {
				return nil, errors.New("option '" + key + "' must be of type string")
			}
			if val != "" {
				mgr.Cfg.Set(configKey(key), val)
			}
		}
	}

	if err = mgr.initStorageService(); err != nil {
		return nil, err
	}

	return mgr, nil
}

func (self *SvkManager) Destroy() {
	// The session is torn down implicitly with the process; nothing holds
	// state that needs an explicit close.
	self.Logger.Debug("svk manager destroyed")
}

// ArtifactDir returns the directory holding generated and downloaded
// artifacts, with any leading ~ already expanded.
func (self *SvkManager) ArtifactDir() string {
	return self.artifactDir
}

// RetrievalMode returns the configured retrieval mode for this run.
func (self *SvkManager) RetrievalMode() (svk.RetrievalMode, error) {
	return svk.ParseRetrievalMode(self.Cfg.GetString("mode"))
}

func (self *SvkManager) initConfig(cfgPath *string) error {
	// This is a private viper context just for svk (so as not to conflict
	// with the importer's usage).
	self.Cfg = viper.New()

	self.Cfg.SetDefault("server.url", "http://localhost:3000")

	// The original scripts blocked forever on a hung server; a bounded
	// request deadline is the intended behavior. Zero disables it.
	self.Cfg.SetDefault("server.timeout", "30s")

	// Where generated and downloaded artifacts live.
	self.Cfg.SetDefault("artifactDir", ".")

	self.Cfg.SetDefault("mode", string(svk.Whole))

	self.Cfg.SetDefault("default-provider", "http")

	// Order of precedence: ENV, svk.yaml, "us-west-2"
	self.Cfg.SetDefault("service.storage.s3.region", "us-west-2")
	self.Cfg.BindEnv("service.storage.s3.region", "AWS_DEFAULT_REGION")

	if cfgPath != nil {
		// Use config file from the flag.
		self.Cfg.SetConfigFile(*cfgPath)
		if err := self.Cfg.ReadInConfig(); err != nil {
			return errors.Wrap(err, "Failed to load config")
		}
		return nil
	}

	// Default search path for config is ./configs/svk.* (* can be json,
	// yaml, etc). The command line carries everything a run needs, so a
	// missing config file is fine.
	self.Cfg.AddConfigPath("./configs")
	self.Cfg.SetConfigName("svk")
	if err := self.Cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "Failed to load config")
		}
	}
	return nil
}

func (self *SvkManager) initStorageService() error {
	dir, err := homedir.Expand(self.Cfg.GetString("artifactDir"))
	if err != nil {
		return errors.Wrap(err, "Failed to resolve artifact directory")
	}
	self.artifactDir = dir

	providerName := self.Cfg.GetString("default-provider")
	switch providerName {
	case "http":
		self.Store = httpstore.NewService(
			self.Logger.WithField("module", "store.http"),
			self.Cfg.GetString("server.url"),
			dir,
			self.Cfg.GetDuration("server.timeout"))
	case "s3":
		self.Store, err = s3store.NewService(
			self.Logger.WithField("module", "store.s3"),
			self.Cfg.GetString("service.storage.s3.bucket"),
			self.Cfg.GetString("service.storage.s3.region"),
			dir)
		if err != nil {
			return errors.Wrap(err, "Failed to initialize s3 provider")
		}
	default:
		return errors.New("Unrecognized storage provider: " + providerName)
	}
	return nil
}

// configKey maps manager option names to their viper keys.
func configKey(opt string) string {
	if opt == "server-url" {
		return "server.url"
	}
	return opt
}
