package stagetest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/stagekit/stage/stagehttp"
)

type SuiteSuite struct {
	Suite
}

func (suite *SuiteSuite) SetupSuite() {
	suite.Options = []stagehttp.Option{pingRouter()}
	suite.Suite.SetupSuite()
}

func (suite *SuiteSuite) TestServerRunning() {
	suite.Require().NotNil(suite.Server())
	suite.True(suite.Server().Started())
	suite.Equal(suite.Server().URL(), suite.URL())
}

func (suite *SuiteSuite) TestClientBound() {
	response, err := suite.Client().Get("/ping").Execute(context.Background())
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, response.Status())
	suite.Equal("pong", response.Body())
}

func (suite *SuiteSuite) TestYAML() {
	suite.YAML(`
port: 8080
path: /api
stopTimeout: 5s
`)

	cfg := suite.UnmarshalConfig()
	suite.Equal(8080, cfg.Port)
	suite.Equal("/api", cfg.Path)
	suite.Equal(5*time.Second, cfg.StopTimeout)
}

func (suite *SuiteSuite) TestJSON() {
	suite.JSON(`{"port": 9090, "webapp": "/tmp/webapp", "stopAtShutdown": true}`)

	cfg := suite.UnmarshalConfig()
	suite.Equal(9090, cfg.Port)
	suite.Equal("/tmp/webapp", cfg.Webapp)
	suite.True(cfg.StopAtShutdown)
}

func (suite *SuiteSuite) TestViperIsolated() {
	suite.Require().NotNil(suite.Viper())
	suite.Empty(suite.Viper().AllKeys())
}

func TestSuite(t *testing.T) {
	suite.Run(t, new(SuiteSuite))
}
