// devstack.go
//
// AgriLearn, a course, community and marketplace service for farmers
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of agrilearn.
// agrilearn is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// agrilearn is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with agrilearn.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package devstack starts the backing services (database and redis) in docker
// containers for local development and integration tests.
package devstack

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Options selects the images and credentials of the stack
type Options struct {
	DBType       string // mysql, mariadb or postgres
	DBImage      string
	DBDatabase   string
	DBUser       string
	DBPassword   string
	RootPassword string
	RedisImage   string // empty skips redis
}

// Stack is a running set of containers
type Stack struct {
	Network *testcontainers.DockerNetwork
	DB      testcontainers.Container
	Redis   testcontainers.Container

	// DBHost and DBPort are reachable from the host running the stack
	DBHost    string
	DBPort    string
	RedisAddr string

	log *logger.Logger
}

// Defaults fills the blank options
func (o Options) withDefaults() Options {
	if o.DBType == "" {
		o.DBType = "mariadb"
	}
	if o.DBImage == "" {
		if o.DBType == "postgres" {
			o.DBImage = "postgres:17-alpine"
		} else {
			o.DBImage = "mariadb:11"
		}
	}
	if o.DBDatabase == "" {
		o.DBDatabase = "agrilearn"
	}
	if o.DBUser == "" {
		o.DBUser = "agrilearn"
	}
	if o.DBPassword == "" {
		o.DBPassword = "agrilearn"
	}
	if o.RootPassword == "" {
		o.RootPassword = "agrilearn-root"
	}
	return o
}

// Start creates the network and starts every container. On failure whatever
// was started is terminated.
func Start(ctx context.Context, opts Options, log *logger.Logger) (*Stack, error) {
	opts = opts.withDefaults()
	s := &Stack{log: log.With("service", "devstack")}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create network: %w", err)
	}
	s.Network = nw

	if err := s.startDB(ctx, opts); err != nil {
		s.Terminate(ctx)
		return nil, err
	}
	if opts.RedisImage != "" {
		if err := s.startRedis(ctx, opts.RedisImage); err != nil {
			s.Terminate(ctx)
			return nil, err
		}
	}
	return s, nil
}

func (s *Stack) startDB(ctx context.Context, opts Options) error {
	portNumber := "3306"
	env := map[string]string{
		"MYSQL_ROOT_PASSWORD": opts.RootPassword,
		"MYSQL_DATABASE":      opts.DBDatabase,
		"MYSQL_USER":          opts.DBUser,
		"MYSQL_PASSWORD":      opts.DBPassword,
	}
	if opts.DBType == "postgres" {
		portNumber = "5432"
		env = map[string]string{
			"POSTGRES_PASSWORD": opts.DBPassword,
			"POSTGRES_USER":     opts.DBUser,
			"POSTGRES_DB":       opts.DBDatabase,
		}
	}
	port, err := nat.NewPort("tcp", portNumber)
	if err != nil {
		return fmt.Errorf("db port: %w", err)
	}

	s.logImage(ctx, opts.DBImage)
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.DBImage,
			ExposedPorts: []string{string(port)},
			Env:          env,
			WaitingFor:   wait.ForListeningPort(port).WithStartupTimeout(90 * time.Second),
			Networks:     []string{s.Network.Name},
			NetworkAliases: map[string][]string{
				s.Network.Name: {"db"},
			},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", opts.DBImage, err)
	}
	s.DB = c

	if s.DBHost, err = c.Host(ctx); err != nil {
		return fmt.Errorf("db host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return fmt.Errorf("db port: %w", err)
	}
	s.DBPort = mapped.Port()

	if opts.DBType != "postgres" {
		return s.waitForMySQL(ctx, opts)
	}
	return nil
}

// waitForMySQL blocks until the server accepts logins; the listening port opens
// before the init scripts finish.
func (s *Stack) waitForMySQL(ctx context.Context, opts Options) error {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
		opts.DBUser, opts.DBPassword, s.DBHost, s.DBPort, opts.DBDatabase))
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database not ready after 30 seconds: %w", err)
}

func (s *Stack) startRedis(ctx context.Context, img string) error {
	port, err := nat.NewPort("tcp", "6379")
	if err != nil {
		return err
	}
	s.logImage(ctx, img)
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        img,
			ExposedPorts: []string{string(port)},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Networks:     []string{s.Network.Name},
			NetworkAliases: map[string][]string{
				s.Network.Name: {"redis"},
			},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", img, err)
	}
	s.Redis = c

	host, err := c.Host(ctx)
	if err != nil {
		return err
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return err
	}
	s.RedisAddr = host + ":" + mapped.Port()
	return nil
}

// logImage notes when an image has to be pulled, which can take a while
func (s *Stack) logImage(ctx context.Context, img string) {
	ok, err := imageExists(ctx, img)
	switch {
	case err != nil:
		s.log.Warn("could not list docker images", "error", err)
	case !ok:
		s.log.Info("pulling image", "image", img)
	}
}

// Terminate stops every container and removes the network
func (s *Stack) Terminate(ctx context.Context) {
	var errs []error
	for _, c := range []testcontainers.Container{s.Redis, s.DB} {
		if c != nil {
			errs = append(errs, c.Terminate(ctx))
		}
	}
	if s.Network != nil {
		errs = append(errs, s.Network.Remove(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Warn("devstack teardown incomplete", "error", err)
	}
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}
