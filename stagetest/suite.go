package stagetest

import (
	"context"
	"strings"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/stagekit/stage"
	"github.com/stagekit/stage/stageclient"
	"github.com/stagekit/stage/stagehttp"
)

// Suite is an embeddable type that boots one staged server for an
// entire testify suite and binds a client to it.  Embed this type in
// testify/suite-style test types, optionally presetting Config and
// Options before suite.Run.
//
// Each test additionally gets a fresh viper instance for
// configuration-driven assertions.
type Suite struct {
	suite.Suite

	// Config is the staged server's configuration.  The zero value
	// stages a server on an ephemeral port at the root path.
	Config stagehttp.Config

	// Options tailor the staged server, e.g. stagehttp.WithRouter
	Options []stagehttp.Option

	server stagehttp.Server
	client stageclient.Client
	viper  *viper.Viper
}

var _ suite.SetupAllSuite = (*Suite)(nil)
var _ suite.SetupTestSuite = (*Suite)(nil)
var _ suite.TearDownAllSuite = (*Suite)(nil)

// SetupSuite builds and starts the staged server, then binds a client
func (suite *Suite) SetupSuite() {
	server, err := stagehttp.NewServer(suite.Config, suite.Options...)
	suite.Require().NoError(err)
	suite.Require().NoError(server.Start(context.Background()))
	suite.server = server

	client, err := stageclient.NewFor(server)
	suite.Require().NoError(err)
	suite.client = client
}

// TearDownSuite destroys the client and stops the server.  Teardown is
// tolerant of tests that stopped the server themselves.
func (suite *Suite) TearDownSuite() {
	if suite.client != nil {
		suite.NoError(suite.client.Destroy())
	}

	if suite.server != nil && suite.server.Started() {
		suite.NoError(suite.server.Stop(context.Background()))
	}
}

// SetupTest initializes a new viper instance for each test
func (suite *Suite) SetupTest() {
	suite.viper = viper.New()
}

// Server returns the staged server shared by this suite
func (suite *Suite) Server() stagehttp.Server {
	return suite.server
}

// Client returns the client bound to this suite's server
func (suite *Suite) Client() stageclient.Client {
	return suite.client
}

// URL returns the staged server's base URL
func (suite *Suite) URL() string {
	return suite.server.URL()
}

// Viper returns the viper instance for the current test.  Tests that
// need tighter control over the viper environment may use this to
// bootstrap additional features.
func (suite *Suite) Viper() *viper.Viper {
	return suite.viper
}

// YAML is a shorthand for bootstrapping the current test's viper
// environment with a given YAML configuration
func (suite *Suite) YAML(v string) {
	suite.viper.SetConfigType("yaml")

	suite.Require().NoError(
		suite.viper.ReadConfig(strings.NewReader(v)),
	)
}

// JSON is a shorthand for bootstrapping the current test's viper
// environment with a given JSON configuration
func (suite *Suite) JSON(v string) {
	suite.viper.SetConfigType("json")

	suite.Require().NoError(
		suite.viper.ReadConfig(strings.NewReader(v)),
	)
}

// UnmarshalConfig reads a stagehttp.Config from the current test's
// viper environment, failing the test on any decode error
func (suite *Suite) UnmarshalConfig(opts ...viper.DecoderConfigOption) stagehttp.Config {
	u, err := stage.ForViper(suite.viper, opts...)
	suite.Require().NoError(err)

	var cfg stagehttp.Config
	suite.Require().NoError(u.Unmarshal(&cfg))
	return cfg
}
