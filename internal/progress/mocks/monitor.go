package mocks

import (
	"github.com/stretchr/testify/mock"
)

type Monitor struct {
	mock.Mock
}

func (_m *Monitor) Begin(task string, totalWork int) {
	_m.Called(task, totalWork)
}

func (_m *Monitor) Worked(work int) {
	_m.Called(work)
}

func (_m *Monitor) Done() {
	_m.Called()
}

func (_m *Monitor) IsCanceled() bool {
	ret := _m.Called()

	var r0 bool
	if rf, ok := ret.Get(0).(func() bool); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(bool)
	}

	return r0
}
