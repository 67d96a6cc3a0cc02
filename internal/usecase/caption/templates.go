package caption

import "social-scheduler/internal/usecase/strategy"

var templates = map[string]string{
	strategy.LabelEarlyAnnouncement: `📅 SAVE THE DATE 📅

{event_name} is coming on {date}!
📍 {venue}

{lineup}
Tickets on sale soon. Turn on notifications so you don't miss out.
{ticket_link}

{hashtags}`,
	strategy.LabelInitialAnnouncement: `🎤 JUST ANNOUNCED 🎤

{event_name}
🗓 {date}
⏰ {start_time}
📍 {venue}

{lineup}
🎟 Tickets: {ticket_link}

{hashtags}`,
	strategy.LabelWeekReminder: `⏳ ONE WEEK TO GO ⏳

{event_name} is next week!
🗓 {date} · {start_time}
📍 {venue}

{lineup}
Grab your tickets before they're gone 👉 {ticket_link}

{hashtags}`,
	strategy.LabelThreeDaysOut: `3 DAYS TO GO! 🔥

{event_name}
🗓 {date} · {start_time}
📍 {venue}

{lineup}
🎟 {ticket_link}

{hashtags}`,
	strategy.LabelDayBefore: `TOMORROW NIGHT 😱

{event_name}
⏰ {start_time}
📍 {venue}

Last chance to grab tickets 👉 {ticket_link}

{hashtags}`,
	strategy.LabelDayOf: `🚨 TONIGHT 🚨

{event_name}
⏰ {start_time}
📍 {venue}

{lineup}
Doors soon. Tickets at the door or 👉 {ticket_link}

{hashtags}`,
	strategy.LabelPostShowRecap: `What a night! 🙌

Thank you to everyone who came to {event_name} at {venue}.

{lineup}
See you at the next one!

{hashtags}`,
}
