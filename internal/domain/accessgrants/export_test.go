package accessgrants

import "time"

func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) SetTokenSource(fn func() (string, error)) { s.newToken = fn }

func (s *Sweeper) RunOnce() { s.run() }
