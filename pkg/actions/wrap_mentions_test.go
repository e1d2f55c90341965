package actions_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/actions"
	wrapslack "github.com/channelwrapped/wrapbot/pkg/interfaces/slack"
	"github.com/channelwrapped/wrapbot/pkg/jobs"
	"github.com/channelwrapped/wrapbot/pkg/wrapped"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

type post struct {
	ChannelID string
	ThreadTS  string
	Text      string
}

type fakeMessenger struct {
	mu          sync.Mutex
	posts       []post
	updates     []string
	summaries   []*wrapped.WrapSummary
	channelErr  error
	postErr     error
	channelName string
}

func (f *fakeMessenger) PostThreadReply(_ context.Context, channelID, threadTS, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posts = append(f.posts, post{ChannelID: channelID, ThreadTS: threadTS, Text: text})
	return fmt.Sprintf("ack-%d", len(f.posts)), nil
}

func (f *fakeMessenger) UpdateMessage(_ context.Context, _, ts, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, ts+"|"+text)
	return nil
}

func (f *fakeMessenger) PostSummary(_ context.Context, _, _ string, _ int, _ string, summary *wrapped.WrapSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	return nil
}

func (f *fakeMessenger) ChannelName(context.Context, string) (string, error) {
	if f.channelErr != nil {
		return "", f.channelErr
	}
	return f.channelName, nil
}

func (f *fakeMessenger) lastUpdate() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return ""
	}
	return f.updates[len(f.updates)-1]
}

type fakeRunner struct {
	mu       sync.Mutex
	requests []jobs.Request
	run      func(ctx context.Context, req jobs.Request, notifier jobs.Notifier) (jobs.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, req jobs.Request, notifier jobs.Notifier) (jobs.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.run(ctx, req, notifier)
}

// fakeListener hands out scripted mentions and then blocks until ctx ends.
type fakeListener struct {
	mentions []wrapslack.Mention
}

func (f *fakeListener) Listen(ctx context.Context, handle func(wrapslack.Mention)) error {
	for _, m := range f.mentions {
		handle(m)
	}
	<-ctx.Done()
	return ctx.Err()
}

var _ = Describe("WrapMentionsHandler", func() {
	var (
		messenger *fakeMessenger
		runner    *fakeRunner
		listener  *fakeListener
		handler   *actions.WrapMentionsHandler
		summary   *wrapped.WrapSummary
		mention   wrapslack.Mention
	)

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(io.Discard)

		summary = &wrapped.WrapSummary{ChannelName: "general", TotalMessages: 3, TopActors: []wrapped.TopActor{}, TopReactions: []wrapped.TopReaction{}}
		messenger = &fakeMessenger{channelName: "general"}
		runner = &fakeRunner{run: func(context.Context, jobs.Request, jobs.Notifier) (jobs.Result, error) {
			return jobs.Result{JobID: "job-1", Status: jobs.StatusCompleted, Summary: summary}, nil
		}}
		listener = &fakeListener{}
		mention = wrapslack.Mention{ChannelID: "C1", UserID: "U1", Text: "<@UBOT> wrap 2023", TS: "10.0"}

		var err error
		handler, err = actions.NewWrapMentionsHandler(listener, messenger, runner, logger, actions.WrapMentionsOptions{
			Location: time.UTC,
			Phrases:  actions.NewPhrases(1),
			Now:      func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) },
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("acknowledges in thread, runs the job and posts the summary", func() {
		handler.HandleMention(context.Background(), mention)

		Expect(messenger.posts).To(HaveLen(1))
		Expect(messenger.posts[0].ThreadTS).To(Equal("10.0"))

		Expect(runner.requests).To(HaveLen(1))
		req := runner.requests[0]
		Expect(req.ChannelName).To(Equal("general"))
		Expect(req.CallerID).To(Equal("U1"))
		Expect(req.Period.Year()).To(Equal(2023))

		Expect(messenger.summaries).To(ConsistOf(summary))
		Expect(messenger.lastUpdate()).To(HavePrefix("ack-1|"))
	})

	It("ignores mentions without the trigger", func() {
		mention.Text = "<@UBOT> hi there"
		handler.HandleMention(context.Background(), mention)
		Expect(messenger.posts).To(BeEmpty())
		Expect(runner.requests).To(BeEmpty())
	})

	It("defaults to the current year", func() {
		mention.Text = "<@UBOT> wrapped"
		handler.HandleMention(context.Background(), mention)
		Expect(runner.requests[0].Period.Year()).To(Equal(2024))
	})

	It("rejects years outside the supported range without running a job", func() {
		mention.Text = "<@UBOT> wrap 1999"
		handler.HandleMention(context.Background(), mention)
		Expect(runner.requests).To(BeEmpty())
		Expect(messenger.posts).To(HaveLen(1))
		Expect(messenger.posts[0].Text).To(ContainSubstring("2013"))
	})

	It("threads replies under the parent when mentioned inside a thread", func() {
		mention.ThreadTS = "9.0"
		handler.HandleMention(context.Background(), mention)
		Expect(messenger.posts[0].ThreadTS).To(Equal("9.0"))
	})

	It("relays progress as loading updates on the acknowledgement", func() {
		runner.run = func(ctx context.Context, _ jobs.Request, notifier jobs.Notifier) (jobs.Result, error) {
			Expect(notifier.Notify(ctx, 100)).To(Succeed())
			return jobs.Result{JobID: "job-1", Status: jobs.StatusCompleted, Summary: summary}, nil
		}
		handler.HandleMention(context.Background(), mention)
		Expect(messenger.updates[0]).To(HavePrefix("ack-1|"))
		Expect(messenger.updates[0]).To(HaveSuffix("(100 messages so far)"))
		Expect(messenger.lastUpdate()).NotTo(ContainSubstring("messages so far"))
	})

	It("tells the caller when the channel is already being wrapped", func() {
		runner.run = func(context.Context, jobs.Request, jobs.Notifier) (jobs.Result, error) {
			return jobs.Result{JobID: "job-2", Status: jobs.StatusBusy}, nil
		}
		handler.HandleMention(context.Background(), mention)
		Expect(messenger.lastUpdate()).To(Equal("ack-1|I'm already wrapping this channel, hang tight!"))
		Expect(messenger.summaries).To(BeEmpty())
	})

	It("asks to be invited when the channel cannot be read", func() {
		runner.run = func(context.Context, jobs.Request, jobs.Notifier) (jobs.Result, error) {
			return jobs.Result{JobID: "job-3", Status: jobs.StatusFailed}, jobs.Classify("job-3", fmt.Errorf("history: %w", wrapped.ErrChannelNotAccessible))
		}
		handler.HandleMention(context.Background(), mention)
		Expect(messenger.lastUpdate()).To(ContainSubstring("Invite me"))
		Expect(messenger.summaries).To(BeEmpty())
	})

	It("reports a generic failure otherwise", func() {
		runner.run = func(context.Context, jobs.Request, jobs.Notifier) (jobs.Result, error) {
			return jobs.Result{JobID: "job-4", Status: jobs.StatusFailed}, jobs.Classify("job-4", errors.New("ratelimited"))
		}
		handler.HandleMention(context.Background(), mention)
		Expect(messenger.lastUpdate()).To(ContainSubstring("Something went wrong"))
	})

	It("classifies a channel lookup failure without starting a job", func() {
		messenger.channelErr = fmt.Errorf("conversations.info: %w", wrapped.ErrChannelNotAccessible)
		handler.HandleMention(context.Background(), mention)
		Expect(runner.requests).To(BeEmpty())
		Expect(messenger.lastUpdate()).To(ContainSubstring("Invite me"))
	})

	It("gives up quietly when the acknowledgement cannot be posted", func() {
		messenger.postErr = errors.New("invalid_auth")
		handler.HandleMention(context.Background(), mention)
		Expect(runner.requests).To(BeEmpty())
		Expect(messenger.updates).To(BeEmpty())
	})

	It("handles streamed mentions until stopped", func() {
		second := mention
		second.ChannelID = "C2"
		second.TS = "11.0"
		listener.mentions = []wrapslack.Mention{mention, second}

		done := make(chan error, 1)
		go func() {
			done <- handler.Execute(context.Background())
		}()

		Eventually(func() int {
			runner.mu.Lock()
			defer runner.mu.Unlock()
			return len(runner.requests)
		}).Should(Equal(2))

		handler.Stop()
		Eventually(done).Should(Receive(BeNil()))

		channels := make([]string, 0, 2)
		for _, p := range messenger.posts {
			channels = append(channels, p.ChannelID)
		}
		Expect(strings.Join(channels, ",")).To(Or(Equal("C1,C2"), Equal("C2,C1")))
	})
})
