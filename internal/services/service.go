package services

import (
	"time"
	"veluna/config"
	"veluna/internal/clock"
	"veluna/internal/repositories"
)

type Service struct {
	Scheduler     *SchedulerService
	DailySend     *DailySendService
	CommandRouter *CommandRouterService
	Repeat        *RepeatService
	Generator     ContentGenerator
	Transport     Transport
	Clock         clock.Clock
}

func New(repos repositories.Repository, config config.Config) (Service, error) {
	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return Service{}, err
	}
	clk := clock.New(location)

	schedulerService, err := NewSchedulerService(config)
	if err != nil {
		return Service{}, err
	}

	generator := NewOpenAIGenerator(config, repos.Oil)
	transport := NewTelegramTransport(config)

	dailySendService := NewDailySendService(
		repos,
		generator,
		transport,
		clk,
		config.PortalHorizonDays,
	)
	commandRouterService := NewCommandRouterService(repos, generator, transport, clk)
	repeatService := NewRepeatService(repos, transport, clk)

	return Service{
		Scheduler:     schedulerService,
		DailySend:     dailySendService,
		CommandRouter: commandRouterService,
		Repeat:        repeatService,
		Generator:     generator,
		Transport:     transport,
		Clock:         clk,
	}, nil
}
