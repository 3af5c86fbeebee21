package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uiprogress"
	"github.com/gosuri/uiprogress/util/strutil"

	"github.com/YuminosukeSato/multilabelcv/multilabel"
)

// foldProgress renders one bar that advances as folds finish.
type foldProgress struct {
	sync.Mutex

	progress *uiprogress.Progress
	bar      *uiprogress.Bar
	status   string
}

func newFoldProgress(w io.Writer, nSplits int) *foldProgress {
	p := &foldProgress{
		progress: uiprogress.New(),
		status:   "starting",
	}
	p.progress.Out = w

	p.bar = p.progress.AddBar(nSplits)
	p.bar.AppendCompleted()
	p.bar.PrependFunc(func(b *uiprogress.Bar) string {
		p.Lock()
		defer p.Unlock()
		return strutil.Resize(fmt.Sprintf("fold %d/%d %s", b.Current(), b.Total, p.status), 32)
	})
	p.bar.AppendElapsed()
	return p
}

func (p *foldProgress) Start() {
	p.progress.Start()
}

// Done advances the bar by one fold.
func (p *foldProgress) Done(ev multilabel.FoldEvent) {
	p.Lock()
	switch {
	case ev.Report != nil:
		p.status = fmt.Sprintf("F1 %.3f", ev.Report.MacroF1())
	case ev.Skipped != nil:
		p.status = "skipped"
	}
	p.Unlock()
	p.bar.Incr()
}

func (p *foldProgress) Stop() {
	p.progress.Stop()
	fmt.Fprintln(p.progress.Out)
}
