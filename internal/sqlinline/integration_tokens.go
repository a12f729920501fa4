package sqlinline

const QEnsureIntegrationTokens = `--sql bf1cbca5-d158-4888-97e2-9a64d00dab8c
create table if not exists integration_tokens (
  provider text primary key,
  token text not null,
  properties jsonb not null default '{}'::jsonb,
  updated_at timestamptz not null default now()
);
`

const QSelectIntegrationToken = `--sql 61c2b492-8747-48df-af8e-e5614b2ea799
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 1fd2258a-7107-4600-940a-0634e51eecff
insert into integration_tokens(provider, token, properties, updated_at)
values ($1::text, $2::text, $3::jsonb, now())
on conflict (provider)
do update set token = excluded.token, properties = excluded.properties, updated_at = now();
`
