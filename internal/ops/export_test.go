package ops

// test hooks, keeping the sweep away from the machine's real directories

func (o *Ops) SetTempDirs(dirs ...string) {
	o.tempDirs = dirs
}

func (o *Ops) SetRemoveFunc(f func(string) error) {
	o.remove = f
}
